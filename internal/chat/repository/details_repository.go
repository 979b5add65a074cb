package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

// detailsRepository implements DetailsRepository on Firestore
type detailsRepository struct {
	client *firestore.Client
}

// NewDetailsRepository creates a new instance of detailsRepository
func NewDetailsRepository(client *firestore.Client) DetailsRepository {
	return &detailsRepository{client: client}
}

func (r *detailsRepository) ItemDetails(ctx context.Context, itemID string) (*domain.ItemDetails, error) {
	snap, err := r.client.Collection("items").Doc(itemID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errs.FromRemote("get item details", err)
	}
	var doc struct {
		Title    string `firestore:"title"`
		ImageURL string `firestore:"imageUrl"`
	}
	if err := snap.DataTo(&doc); err != nil {
		return nil, errs.FromRemote("decode item details", err)
	}
	return &domain.ItemDetails{ID: snap.Ref.ID, Title: doc.Title, ImageURL: doc.ImageURL}, nil
}

func (r *detailsRepository) UserDetails(ctx context.Context, userID string) (*domain.UserDetails, error) {
	snap, err := r.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errs.FromRemote("get user details", err)
	}
	var doc struct {
		Name      string `firestore:"name"`
		AvatarURL string `firestore:"avatarUrl"`
	}
	if err := snap.DataTo(&doc); err != nil {
		return nil, errs.FromRemote("decode user details", err)
	}
	return &domain.UserDetails{ID: snap.Ref.ID, Name: doc.Name, AvatarURL: doc.AvatarURL}, nil
}
