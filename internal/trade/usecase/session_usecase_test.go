package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/internal/trade/repository"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

type sessionFixture struct {
	items    *fakeItemRepo
	sessions *fakeSessionRepo
	offers   *fakeOfferRepo
	cache    repository.CacheRepository
	limiter  *fakeLimiter
	uc       SessionUsecase
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		items:    newFakeItemRepo(),
		sessions: newFakeSessionRepo(),
		offers:   newFakeOfferRepo(),
		cache:    newCache(t),
		limiter:  &fakeLimiter{allowed: true, remaining: 50},
	}
	f.uc = NewSessionUsecase(f.sessions, f.items, f.offers, f.cache, f.limiter, fastRetry())
	return f
}

func (f *sessionFixture) withAnchor(t *testing.T) *domain.SwipeSession {
	t.Helper()
	f.items.add(availableItem("anchor", "U1", time.Hour))
	session, err := f.uc.CreateSwipeSession(context.Background(), "U1", "anchor")
	require.NoError(t, err)
	return session
}

func TestCreateSwipeSession_HappyPath(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)

	assert.Equal(t, "U1", session.UserID)
	assert.Equal(t, "anchor", session.TradeAnchorID)
	assert.Empty(t, session.Swipes)
	assert.Equal(t, session.ID, f.sessions.current["U1"])

	// session is mirrored locally
	state := f.uc.RestoreSessionFromCache("U1")
	require.NotNil(t, state)
	assert.Equal(t, session.ID, state.ID)
}

func TestCreateSwipeSession_AnchorNotOwned(t *testing.T) {
	f := newSessionFixture(t)
	f.items.add(availableItem("other", "U2", time.Hour))

	_, err := f.uc.CreateSwipeSession(context.Background(), "U1", "other")
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
}

func TestCreateSwipeSession_AnchorNotAvailable(t *testing.T) {
	f := newSessionFixture(t)
	anchor := availableItem("anchor", "U1", time.Hour)
	anchor.Status = domain.ItemStatusPending
	f.items.add(anchor)

	_, err := f.uc.CreateSwipeSession(context.Background(), "U1", "anchor")
	assert.Equal(t, errs.InvalidArgument, errs.KindOf(err))
}

func TestCreateSwipeSession_AnchorMissing(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.uc.CreateSwipeSession(context.Background(), "U1", "ghost")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestRecordSwipe_ValidatesDirection(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", "sideways")
	assert.Equal(t, errs.InvalidArgument, errs.KindOf(err))
}

func TestRecordSwipe_RateLimited(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.limiter.allowed = false
	f.limiter.remaining = 0

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	assert.Equal(t, errs.RateLimited, errs.KindOf(err))
}

func TestRecordSwipe_LowQuotaWarning(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.limiter.remaining = 3

	outcome, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "swipe quota running low", outcome.Warning)
}

func TestRecordSwipe_OwnershipEnforced(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "intruder", "I1", domain.SwipeLeft)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
}

func TestRecordSwipe_SuccessMirrorsSession(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)

	outcome, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.Warning)
	assert.Equal(t, 1, f.limiter.recorded)

	remote, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, remote.Swipes, 1)
	assert.Equal(t, "I1", remote.Swipes[0].ItemID)

	state := f.uc.RestoreSessionFromCache("U1")
	require.NotNil(t, state)
	require.Len(t, state.Swipes, 1)
	assert.Equal(t, "I1", state.Swipes[0].ItemID)
}

func TestRecordSwipe_RightSwipeCreatesOffer(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.items.add(availableItem("wanted", "U2", time.Minute))

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "wanted", domain.SwipeRight)
	require.NoError(t, err)

	// offer creation runs detached from the swipe
	offerID := repository.OfferID("U1", "wanted")
	require.Eventually(t, func() bool {
		_, err := f.offers.GetByID(context.Background(), offerID)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	offer, err := f.offers.GetByID(context.Background(), offerID)
	require.NoError(t, err)
	assert.Equal(t, "anchor", offer.OfferedItemID)
	assert.Equal(t, "wanted", offer.RequestedItemID)
	assert.Equal(t, "U2", offer.ToUserID)
	assert.Equal(t, domain.OfferStatusPending, offer.Status)
}

func TestRecordSwipe_ReswipeReplacesRecord(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.items.add(availableItem("I1", "U2", time.Minute))

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)
	_, err = f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeRight)
	require.NoError(t, err)

	remote, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, remote.Swipes, 1)
	assert.Equal(t, "I1", remote.Swipes[0].ItemID)
	assert.Equal(t, domain.SwipeRight, remote.Swipes[0].Direction)

	state := f.uc.RestoreSessionFromCache("U1")
	require.NotNil(t, state)
	require.Len(t, state.Swipes, 1)
	assert.Equal(t, domain.SwipeRight, state.Swipes[0].Direction)
}

func TestRecordSwipe_OfflineQueuesAndSucceeds(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.sessions.appendErr = errs.OfflineErr("append swipe", nil)

	outcome, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeRight)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "saved locally, will sync when back online", outcome.Warning)

	pending, err := f.cache.PendingSwipes("U1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, session.ID, pending[0].SessionID)
	assert.Equal(t, "I1", pending[0].ItemID)
	assert.Equal(t, domain.SwipeRight, pending[0].Direction)

	// optimistic append into the mirror
	state := f.uc.RestoreSessionFromCache("U1")
	require.NotNil(t, state)
	require.Len(t, state.Swipes, 1)
	assert.Equal(t, "I1", state.Swipes[0].ItemID)
}

func TestRecordSwipe_NonOfflineFailurePropagates(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.sessions.appendErr = errs.New(errs.Unknown, "corrupt document")

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.Error(t, err)
	assert.Equal(t, errs.Unknown, errs.KindOf(err))

	pending, _ := f.cache.PendingSwipes("U1")
	assert.Empty(t, pending)
}

func TestRecordSwipe_BothRecordsPersistOnRapidSuccession(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)

	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)
	_, err = f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I2", domain.SwipeRight)
	require.NoError(t, err)

	remote, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, sw := range remote.Swipes {
		ids[sw.ItemID] = true
	}
	assert.True(t, ids["I1"])
	assert.True(t, ids["I2"])
}

func TestRemoveSwipe(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)

	require.NoError(t, f.uc.RemoveSwipe(context.Background(), session.ID, "U1", "I1"))

	remote, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, remote.Swipes)

	state := f.uc.RestoreSessionFromCache("U1")
	require.NotNil(t, state)
	assert.Empty(t, state.Swipes)
}

func TestRemoveSwipe_UnknownItem(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	err := f.uc.RemoveSwipe(context.Background(), session.ID, "U1", "never-swiped")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestClearHistory(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)
	_, err = f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I2", domain.SwipeLeft)
	require.NoError(t, err)

	require.NoError(t, f.uc.ClearHistory(context.Background(), session.ID, "U1"))

	history, err := f.uc.GetSwipeHistory(context.Background(), session.ID, "U1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetSwipeHistory_OfflineFallsBackToCache(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	_, err := f.uc.RecordSwipe(context.Background(), session.ID, "U1", "I1", domain.SwipeLeft)
	require.NoError(t, err)

	f.sessions.getErr = errs.OfflineErr("get session", nil)
	history, err := f.uc.GetSwipeHistory(context.Background(), session.ID, "U1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "I1", history[0].ItemID)
}

func TestGetSwipeHistory_OfflineWithoutMatchingCachePropagates(t *testing.T) {
	f := newSessionFixture(t)
	session := f.withAnchor(t)
	f.sessions.getErr = errs.OfflineErr("get session", nil)

	_, err := f.uc.GetSwipeHistory(context.Background(), session.ID, "someone-else")
	require.Error(t, err)
	assert.True(t, errs.IsOffline(err))
}

func TestRestoreSessionFromCache_WrongUserReturnsNil(t *testing.T) {
	f := newSessionFixture(t)
	f.withAnchor(t)
	assert.Nil(t, f.uc.RestoreSessionFromCache("U2"))
	assert.NotNil(t, f.uc.RestoreSessionFromCache("U1"))
}
