package repository

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/localstore"
)

const (
	pendingSwipesKeyPrefix = "pending_swipes:"
	sessionStateKeyPrefix  = "swipe_session:"
)

// cacheRepository implements CacheRepository over the durable local
// key/value store. A single mutex serializes every mutation so the
// optimistic mirror and the queue never race each other; values are
// always replaced wholesale.
type cacheRepository struct {
	mu    sync.Mutex
	store *localstore.Store
}

// NewCacheRepository creates a new instance of cacheRepository
func NewCacheRepository(store *localstore.Store) CacheRepository {
	return &cacheRepository{store: store}
}

func (r *cacheRepository) EnqueuePendingSwipe(userID string, swipe domain.CachedSwipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, err := r.readQueue(userID)
	if err != nil {
		return err
	}
	for _, existing := range queue {
		if existing.Equal(swipe) {
			return nil
		}
	}
	queue = append(queue, swipe)
	return r.writeQueue(userID, queue)
}

func (r *cacheRepository) PendingSwipes(userID string) ([]domain.CachedSwipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readQueue(userID)
}

func (r *cacheRepository) RemovePendingSwipe(userID string, swipe domain.CachedSwipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, err := r.readQueue(userID)
	if err != nil {
		return err
	}
	kept := queue[:0]
	for _, existing := range queue {
		if !existing.Equal(swipe) {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		return r.store.Remove(pendingSwipesKeyPrefix + userID)
	}
	return r.writeQueue(userID, kept)
}

func (r *cacheRepository) SaveSessionState(state *domain.CachedSessionState) error {
	if state == nil || !state.Complete() {
		log.Printf("[Cache] Refusing to mirror incomplete session snapshot")
		return errors.New("incomplete session snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.store.Set(sessionStateKeyPrefix+state.UserID, string(data))
}

func (r *cacheRepository) SessionState(userID string) (*domain.CachedSessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.Get(sessionStateKeyPrefix + userID)
	if err == localstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.CachedSessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *cacheRepository) AppendCachedSwipe(userID, sessionID string, entry domain.CachedSwipeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.Get(sessionStateKeyPrefix + userID)
	if err == localstore.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	var state domain.CachedSessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return err
	}
	if state.ID != sessionID {
		return nil
	}
	// one entry per item, matching the remote session invariant
	kept := make([]domain.CachedSwipeEntry, 0, len(state.Swipes)+1)
	for _, sw := range state.Swipes {
		if sw.ItemID != entry.ItemID {
			kept = append(kept, sw)
		}
	}
	state.Swipes = append(kept, entry)
	if entry.Timestamp > state.LastActivityAt {
		state.LastActivityAt = entry.Timestamp
	}
	data, err := json.Marshal(&state)
	if err != nil {
		return err
	}
	return r.store.Set(sessionStateKeyPrefix+userID, string(data))
}

func (r *cacheRepository) ClearSessionState(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Remove(sessionStateKeyPrefix + userID)
}

func (r *cacheRepository) readQueue(userID string) ([]domain.CachedSwipe, error) {
	raw, err := r.store.Get(pendingSwipesKeyPrefix + userID)
	if err == localstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var queue []domain.CachedSwipe
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

func (r *cacheRepository) writeQueue(userID string, queue []domain.CachedSwipe) error {
	data, err := json.Marshal(queue)
	if err != nil {
		return err
	}
	return r.store.Set(pendingSwipesKeyPrefix+userID, string(data))
}
