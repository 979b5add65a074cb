package usecase

import (
	"context"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/geo"
)

// PoolResult is one page of the item pool. An empty page distinguishes
// "the store had no candidates" from "candidates existed but every one
// was excluded", so the UI can decide between broadening filters and a
// terminal empty state.
type PoolResult struct {
	Items      []*domain.Item `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	// NoCandidates is true when the remote store returned nothing at all.
	NoCandidates bool `json:"no_candidates"`
	// FilteredOut counts candidates dropped by the exclusion predicates.
	FilteredOut int `json:"filtered_out"`
}

// PoolUsecase defines the interface for item pool queries
type PoolUsecase interface {
	BuildItemPool(ctx context.Context, userID string, history []string, limit int, cursor string, filters *domain.PoolFilters, userLocation *geo.Point) (*PoolResult, error)
}

// SwipeOutcome is returned by RecordSwipe so the UI can surface
// non-blocking notices ("will sync later", "quota running low") without
// failing the interaction.
type SwipeOutcome struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
}

// SessionUsecase defines the interface for swipe session use cases
type SessionUsecase interface {
	CreateSwipeSession(ctx context.Context, userID, anchorItemID string) (*domain.SwipeSession, error)
	RecordSwipe(ctx context.Context, sessionID, userID, itemID string, direction domain.SwipeDirection) (*SwipeOutcome, error)
	RemoveSwipe(ctx context.Context, sessionID, userID, itemID string) error
	ClearHistory(ctx context.Context, sessionID, userID string) error
	GetSwipeHistory(ctx context.Context, sessionID, userID string) ([]domain.SwipeRecord, error)
	// RestoreSessionFromCache is a pure local read; it returns nil rather
	// than an error when nothing usable is cached.
	RestoreSessionFromCache(userID string) *domain.CachedSessionState
}

// SyncUsecase defines the interface for pending-swipe replay
type SyncUsecase interface {
	// SyncPendingSwipes drains the user's pending-swipe queue against the
	// remote store and returns the number of entries replayed.
	SyncPendingSwipes(ctx context.Context, userID string) (int, error)
}
