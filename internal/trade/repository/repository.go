package repository

import (
	"context"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/geo"
)

// ItemRepository reads the items collection. The trade core never writes
// items.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	// FetchCandidates returns up to fetchLimit available items not owned
	// by userID, newest first, resuming after cursor when non-empty. The
	// returned cursor resumes the page after the last item.
	FetchCandidates(ctx context.Context, userID string, fetchLimit int, cursor string) ([]*domain.Item, string, error)
	// OwnerLocations batch-fetches the home coordinates of the given
	// owners. Owners without a stored location are absent from the map.
	OwnerLocations(ctx context.Context, ownerIDs []string) (map[string]*geo.Point, error)
}

// SessionRepository persists swipe sessions in the remote store.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.SwipeSession) error
	GetByID(ctx context.Context, id string) (*domain.SwipeSession, error)
	// UpsertSwipe writes the record and touches lastActivityAt. A
	// session holds at most one record per item: re-swiping an item
	// replaces its previous record instead of adding a second one.
	UpsertSwipe(ctx context.Context, sessionID string, record domain.SwipeRecord) error
	RemoveSwipe(ctx context.Context, sessionID string, record domain.SwipeRecord) error
	ClearSwipes(ctx context.Context, sessionID string) error
	// SetCurrent marks sessionID as the user's one current session,
	// superseding any previous one.
	SetCurrent(ctx context.Context, userID, sessionID string) error
}

// OfferRepository persists trade offers created by right-swipes.
type OfferRepository interface {
	// Upsert writes the offer, keyed deterministically so repeated
	// right-swipes on the same item do not create duplicates.
	Upsert(ctx context.Context, offer *domain.TradeOffer) error
	GetByID(ctx context.Context, id string) (*domain.TradeOffer, error)
}

// CacheRepository owns the durable local mirror: the pending-swipe queue
// and the last known-good session snapshot. It is the only writer of
// those keys; all mutations are whole-value replacements behind a single
// lock.
type CacheRepository interface {
	EnqueuePendingSwipe(userID string, swipe domain.CachedSwipe) error
	PendingSwipes(userID string) ([]domain.CachedSwipe, error)
	RemovePendingSwipe(userID string, swipe domain.CachedSwipe) error

	// SaveSessionState mirrors a complete snapshot; incomplete snapshots
	// are rejected.
	SaveSessionState(state *domain.CachedSessionState) error
	// SessionState returns the mirrored snapshot for userID, or nil when
	// none is cached.
	SessionState(userID string) (*domain.CachedSessionState, error)
	// AppendCachedSwipe optimistically appends to the mirrored snapshot
	// if one exists for sessionID. A missing or mismatched snapshot is
	// not an error.
	AppendCachedSwipe(userID, sessionID string, entry domain.CachedSwipeEntry) error
	ClearSessionState(userID string) error
}
