package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

const offersCollection = "tradeOffers"

// offerRepository implements OfferRepository on Firestore
type offerRepository struct {
	client *firestore.Client
}

// NewOfferRepository creates a new instance of offerRepository
func NewOfferRepository(client *firestore.Client) OfferRepository {
	return &offerRepository{client: client}
}

// OfferID derives the deterministic document id for an offer, so a
// repeated right-swipe upserts instead of duplicating.
func OfferID(fromUserID, requestedItemID string) string {
	return fromUserID + "_" + requestedItemID
}

func (r *offerRepository) Upsert(ctx context.Context, offer *domain.TradeOffer) error {
	_, err := r.client.Collection(offersCollection).Doc(offer.ID).Set(ctx, offer)
	return errs.FromRemote("upsert trade offer", err)
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*domain.TradeOffer, error) {
	snap, err := r.client.Collection(offersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.Newf(errs.NotFound, "trade offer %s not found", id)
		}
		return nil, errs.FromRemote("get trade offer", err)
	}
	var offer domain.TradeOffer
	if err := snap.DataTo(&offer); err != nil {
		return nil, errs.FromRemote("decode trade offer", err)
	}
	offer.ID = snap.Ref.ID
	return &offer, nil
}
