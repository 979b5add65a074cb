package repository

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/geo"
)

const (
	itemsCollection = "items"
	usersCollection = "users"
)

// itemRepository implements ItemRepository on Firestore
type itemRepository struct {
	client *firestore.Client
}

// NewItemRepository creates a new instance of itemRepository
func NewItemRepository(client *firestore.Client) ItemRepository {
	return &itemRepository{client: client}
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	snap, err := r.client.Collection(itemsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.Newf(errs.NotFound, "item %s not found", id)
		}
		return nil, errs.FromRemote("get item", err)
	}
	var item domain.Item
	if err := snap.DataTo(&item); err != nil {
		return nil, errs.FromRemote("decode item", err)
	}
	item.ID = snap.Ref.ID
	return &item, nil
}

func (r *itemRepository) FetchCandidates(ctx context.Context, userID string, fetchLimit int, cursor string) ([]*domain.Item, string, error) {
	q := r.client.Collection(itemsCollection).
		Where("status", "==", string(domain.ItemStatusAvailable)).
		Where("ownerId", "!=", userID).
		OrderBy("createdAt", firestore.Desc).
		Limit(fetchLimit)

	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", errs.New(errs.InvalidArgument, "malformed pool cursor")
		}
		q = q.StartAfter(after)
	}

	var items []*domain.Item
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", errs.FromRemote("query item candidates", err)
		}
		var item domain.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, "", errs.FromRemote("decode item candidate", err)
		}
		item.ID = doc.Ref.ID
		items = append(items, &item)
	}

	next := ""
	if len(items) == fetchLimit {
		next = encodeCursor(items[len(items)-1].CreatedAt)
	}
	return items, next, nil
}

func (r *itemRepository) OwnerLocations(ctx context.Context, ownerIDs []string) (map[string]*geo.Point, error) {
	if len(ownerIDs) == 0 {
		return map[string]*geo.Point{}, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		refs = append(refs, r.client.Collection(usersCollection).Doc(id))
	}
	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errs.FromRemote("batch fetch owner locations", err)
	}

	locations := make(map[string]*geo.Point, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var user struct {
			Location *geo.Point `firestore:"location"`
		}
		if err := snap.DataTo(&user); err != nil || user.Location == nil {
			continue
		}
		locations[snap.Ref.ID] = user.Location
	}
	return locations, nil
}

// Cursors are the createdAt of the last returned item, encoded as unix
// nanoseconds so they survive a round trip through the query string.
func encodeCursor(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func decodeCursor(cursor string) (time.Time, error) {
	ns, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns), nil
}
