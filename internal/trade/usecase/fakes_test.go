package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/navinavi029/Circld-sub003/internal/ratelimit"
	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/internal/trade/repository"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/geo"
	"github.com/navinavi029/Circld-sub003/pkg/localstore"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

func fastRetry() *retry.Executor {
	return &retry.Executor{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func newCache(t *testing.T) repository.CacheRepository {
	t.Helper()
	store, err := localstore.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return repository.NewCacheRepository(store)
}

// fakeItemRepo mimics the remote items collection, including the
// server-side predicates of the candidate query.
type fakeItemRepo struct {
	mu         sync.Mutex
	items      map[string]*domain.Item
	locations  map[string]*geo.Point
	fetchErr   error
	fetchCalls int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:     make(map[string]*domain.Item),
		locations: make(map[string]*geo.Point),
	}
}

func (f *fakeItemRepo) add(item *domain.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
}

func (f *fakeItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "item %s not found", id)
	}
	clone := *item
	return &clone, nil
}

func (f *fakeItemRepo) FetchCandidates(ctx context.Context, userID string, fetchLimit int, cursor string) ([]*domain.Item, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, "", f.fetchErr
	}
	var matched []*domain.Item
	for _, item := range f.items {
		if item.Status != domain.ItemStatusAvailable || item.OwnerID == userID {
			continue
		}
		clone := *item
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > fetchLimit {
		matched = matched[:fetchLimit]
	}
	return matched, "", nil
}

func (f *fakeItemRepo) OwnerLocations(ctx context.Context, ownerIDs []string) (map[string]*geo.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*geo.Point)
	for _, id := range ownerIDs {
		if loc, ok := f.locations[id]; ok {
			out[id] = loc
		}
	}
	return out, nil
}

// fakeSessionRepo mimics the remote sessions collection with injectable
// failures on the append path.
type fakeSessionRepo struct {
	mu          sync.Mutex
	sessions    map[string]*domain.SwipeSession
	current     map[string]string
	appendErr   error
	appendAfter int // fail the first appendAfter calls, then succeed
	appendCalls int
	getErr      error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]*domain.SwipeSession),
		current:  make(map[string]string),
	}
}

func (f *fakeSessionRepo) put(s *domain.SwipeSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *s
	clone.Swipes = append([]domain.SwipeRecord(nil), s.Swipes...)
	f.sessions[s.ID] = &clone
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *domain.SwipeSession) error {
	f.put(session)
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.SwipeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "session %s not found", id)
	}
	clone := *session
	clone.Swipes = append([]domain.SwipeRecord(nil), session.Swipes...)
	return &clone, nil
}

func (f *fakeSessionRepo) UpsertSwipe(ctx context.Context, sessionID string, record domain.SwipeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendCalls++
	if f.appendErr != nil && (f.appendAfter == 0 || f.appendCalls <= f.appendAfter) {
		return f.appendErr
	}
	session, ok := f.sessions[sessionID]
	if !ok {
		return errs.Newf(errs.NotFound, "session %s not found", sessionID)
	}
	kept := make([]domain.SwipeRecord, 0, len(session.Swipes)+1)
	for _, sw := range session.Swipes {
		if sw.ItemID != record.ItemID {
			kept = append(kept, sw)
		}
	}
	session.Swipes = append(kept, record)
	session.LastActivityAt = time.Now()
	return nil
}

func (f *fakeSessionRepo) RemoveSwipe(ctx context.Context, sessionID string, record domain.SwipeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return errs.Newf(errs.NotFound, "session %s not found", sessionID)
	}
	kept := session.Swipes[:0]
	for _, sw := range session.Swipes {
		if sw.ItemID != record.ItemID {
			kept = append(kept, sw)
		}
	}
	session.Swipes = kept
	return nil
}

func (f *fakeSessionRepo) ClearSwipes(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return errs.Newf(errs.NotFound, "session %s not found", sessionID)
	}
	session.Swipes = nil
	return nil
}

func (f *fakeSessionRepo) SetCurrent(ctx context.Context, userID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current[userID] = sessionID
	return nil
}

// fakeOfferRepo records upserted offers.
type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*domain.TradeOffer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]*domain.TradeOffer)}
}

func (f *fakeOfferRepo) Upsert(ctx context.Context, offer *domain.TradeOffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *offer
	f.offers[offer.ID] = &clone
	return nil
}

func (f *fakeOfferRepo) GetByID(ctx context.Context, id string) (*domain.TradeOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer, ok := f.offers[id]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "trade offer %s not found", id)
	}
	clone := *offer
	return &clone, nil
}

// fakeLimiter returns a fixed quota.
type fakeLimiter struct {
	allowed   bool
	remaining int
	recorded  int
}

func (f *fakeLimiter) Check(userID, actionType string) ratelimit.Result {
	return ratelimit.Result{Allowed: f.allowed, Remaining: f.remaining}
}

func (f *fakeLimiter) RecordAction(userID, actionType string) { f.recorded++ }
