package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/navinavi029/Circld-sub003/internal/ratelimit"
	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/internal/trade/repository"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

const (
	swipeAction = "swipe"
	// lowQuotaThreshold is the remaining-quota level at which an advisory
	// warning is attached to successful swipes.
	lowQuotaThreshold = 10
)

// sessionUsecase implements SessionUsecase
type sessionUsecase struct {
	sessions repository.SessionRepository
	items    repository.ItemRepository
	offers   repository.OfferRepository
	cache    repository.CacheRepository
	limiter  ratelimit.Limiter
	exec     *retry.Executor
}

// NewSessionUsecase creates a new instance of sessionUsecase
func NewSessionUsecase(sessions repository.SessionRepository, items repository.ItemRepository, offers repository.OfferRepository, cache repository.CacheRepository, limiter ratelimit.Limiter, exec *retry.Executor) SessionUsecase {
	return &sessionUsecase{
		sessions: sessions,
		items:    items,
		offers:   offers,
		cache:    cache,
		limiter:  limiter,
		exec:     exec,
	}
}

// CreateSwipeSession validates the anchor and opens a new session,
// superseding the user's previous one. Anchor violations are fatal and
// never retried.
func (u *sessionUsecase) CreateSwipeSession(ctx context.Context, userID, anchorItemID string) (*domain.SwipeSession, error) {
	if userID == "" || anchorItemID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id and anchor item id are required")
	}

	anchor, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.Item, error) {
		return u.items.GetByID(ctx, anchorItemID)
	})
	if err != nil {
		return nil, err
	}
	if anchor.OwnerID != userID {
		return nil, errs.Newf(errs.Unauthorized, "anchor item %s is not owned by user %s", anchorItemID, userID)
	}
	if anchor.Status != domain.ItemStatusAvailable {
		return nil, errs.Newf(errs.InvalidArgument, "anchor item %s is not available", anchorItemID)
	}

	now := time.Now()
	session := &domain.SwipeSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		TradeAnchorID:  anchorItemID,
		CreatedAt:      now,
		LastActivityAt: now,
		Swipes:         []domain.SwipeRecord{},
	}

	err = u.exec.Do(ctx, func(ctx context.Context) error {
		return u.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	if err := u.exec.Do(ctx, func(ctx context.Context) error {
		return u.sessions.SetCurrent(ctx, userID, session.ID)
	}); err != nil {
		log.Printf("[Session] Failed to mark session %s current: %v", session.ID, err)
	}

	u.mirrorSession(session)
	return session, nil
}

// RecordSwipe appends one decision. A connectivity loss does not fail
// the call: the swipe is queued locally, the mirror updated
// optimistically, and the caller gets success with a warning.
func (u *sessionUsecase) RecordSwipe(ctx context.Context, sessionID, userID, itemID string, direction domain.SwipeDirection) (*SwipeOutcome, error) {
	if sessionID == "" || userID == "" || itemID == "" {
		return nil, errs.New(errs.InvalidArgument, "session id, user id and item id are required")
	}
	if !direction.Valid() {
		return nil, errs.Newf(errs.InvalidArgument, "invalid swipe direction %q", direction)
	}

	quota := u.limiter.Check(userID, swipeAction)
	if !quota.Allowed {
		return nil, errs.Newf(errs.RateLimited, "swipe limit reached, %d remaining", quota.Remaining)
	}
	warning := ""
	if quota.Remaining <= lowQuotaThreshold {
		warning = "swipe quota running low"
	}

	now := time.Now()
	record := domain.SwipeRecord{ItemID: itemID, Direction: direction, Timestamp: now}

	session, err := u.appendRemote(ctx, sessionID, userID, record)
	if err != nil {
		if errs.IsOffline(err) {
			return u.recordOffline(sessionID, userID, itemID, direction, now, warning)
		}
		return nil, err
	}

	u.limiter.RecordAction(userID, swipeAction)

	session.Swipes = replaceSwipe(session.Swipes, record)
	session.LastActivityAt = now
	u.mirrorSession(session)

	if direction == domain.SwipeRight {
		// offer creation is secondary to the swipe; it runs detached and
		// its failure is only logged
		go u.createOffer(session, itemID, now)
	}

	return &SwipeOutcome{Success: true, Warning: warning}, nil
}

// appendRemote performs the ownership check and the swipe upsert as one
// retried remote interaction.
func (u *sessionUsecase) appendRemote(ctx context.Context, sessionID, userID string, record domain.SwipeRecord) (*domain.SwipeSession, error) {
	return retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.SwipeSession, error) {
		session, err := u.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if session.UserID != userID {
			return nil, errs.Newf(errs.Unauthorized, "session %s does not belong to user %s", sessionID, userID)
		}
		if err := u.sessions.UpsertSwipe(ctx, sessionID, record); err != nil {
			return nil, err
		}
		return session, nil
	})
}

// replaceSwipe keeps at most one record per item: the new record takes
// the place of any earlier one for the same item.
func replaceSwipe(swipes []domain.SwipeRecord, record domain.SwipeRecord) []domain.SwipeRecord {
	kept := make([]domain.SwipeRecord, 0, len(swipes)+1)
	for _, sw := range swipes {
		if sw.ItemID != record.ItemID {
			kept = append(kept, sw)
		}
	}
	return append(kept, record)
}

func (u *sessionUsecase) recordOffline(sessionID, userID, itemID string, direction domain.SwipeDirection, at time.Time, warning string) (*SwipeOutcome, error) {
	cached := domain.CachedSwipe{
		SessionID: sessionID,
		UserID:    userID,
		ItemID:    itemID,
		Direction: direction,
		Timestamp: at.UnixMilli(),
	}
	if err := u.cache.EnqueuePendingSwipe(userID, cached); err != nil {
		// the swipe reached neither the store nor the queue; this one is
		// a real failure
		log.Printf("[Session] Failed to queue offline swipe: %v", err)
		return nil, errs.OfflineErr("record swipe", err)
	}
	if err := u.cache.AppendCachedSwipe(userID, sessionID, domain.CachedSwipeEntry{
		ItemID:    itemID,
		Direction: direction,
		Timestamp: at.UnixMilli(),
	}); err != nil {
		log.Printf("[Session] Failed to update cached session snapshot: %v", err)
	}
	u.limiter.RecordAction(userID, swipeAction)

	log.Printf("[Session] Swipe on item %s queued while offline", itemID)
	if warning == "" {
		warning = "saved locally, will sync when back online"
	}
	return &SwipeOutcome{Success: true, Warning: warning}, nil
}

// createOffer records the like as a trade offer, detached from the swipe
// call that triggered it.
func (u *sessionUsecase) createOffer(session *domain.SwipeSession, itemID string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	upsertLikeOffer(ctx, u.exec, u.items, u.offers, session, itemID, at)
}

// upsertLikeOffer writes the trade offer a right swipe stands for: the
// session's anchor in exchange for the liked item. The offer id derives
// from (user, item), so recording the same like again is idempotent.
// Failure is logged, never propagated.
func upsertLikeOffer(ctx context.Context, exec *retry.Executor, items repository.ItemRepository, offers repository.OfferRepository, session *domain.SwipeSession, itemID string, at time.Time) {
	target, err := retry.DoValue(ctx, exec, func(ctx context.Context) (*domain.Item, error) {
		return items.GetByID(ctx, itemID)
	})
	if err != nil {
		log.Printf("[Session] Could not resolve liked item %s for offer: %v", itemID, err)
		return
	}
	offer := &domain.TradeOffer{
		ID:              repository.OfferID(session.UserID, itemID),
		FromUserID:      session.UserID,
		ToUserID:        target.OwnerID,
		OfferedItemID:   session.TradeAnchorID,
		RequestedItemID: itemID,
		Status:          domain.OfferStatusPending,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if err := exec.Do(ctx, func(ctx context.Context) error {
		return offers.Upsert(ctx, offer)
	}); err != nil {
		log.Printf("[Session] Failed to create trade offer for item %s: %v", itemID, err)
	}
}

// RemoveSwipe undoes one decision. No offline queue here: a failed
// remote write propagates.
func (u *sessionUsecase) RemoveSwipe(ctx context.Context, sessionID, userID, itemID string) error {
	if sessionID == "" || userID == "" || itemID == "" {
		return errs.New(errs.InvalidArgument, "session id, user id and item id are required")
	}
	return u.exec.Do(ctx, func(ctx context.Context) error {
		session, err := u.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.UserID != userID {
			return errs.Newf(errs.Unauthorized, "session %s does not belong to user %s", sessionID, userID)
		}
		var record *domain.SwipeRecord
		for i := range session.Swipes {
			if session.Swipes[i].ItemID == itemID {
				record = &session.Swipes[i]
				break
			}
		}
		if record == nil {
			return errs.Newf(errs.NotFound, "no swipe recorded for item %s", itemID)
		}
		if err := u.sessions.RemoveSwipe(ctx, sessionID, *record); err != nil {
			return err
		}

		kept := make([]domain.SwipeRecord, 0, len(session.Swipes)-1)
		for _, sw := range session.Swipes {
			if sw.ItemID != itemID {
				kept = append(kept, sw)
			}
		}
		session.Swipes = kept
		session.LastActivityAt = time.Now()
		u.mirrorSession(session)
		return nil
	})
}

// ClearHistory removes every decision from the session.
func (u *sessionUsecase) ClearHistory(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return errs.New(errs.InvalidArgument, "session id and user id are required")
	}
	return u.exec.Do(ctx, func(ctx context.Context) error {
		session, err := u.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.UserID != userID {
			return errs.Newf(errs.Unauthorized, "session %s does not belong to user %s", sessionID, userID)
		}
		if err := u.sessions.ClearSwipes(ctx, sessionID); err != nil {
			return err
		}
		session.Swipes = nil
		session.LastActivityAt = time.Now()
		u.mirrorSession(session)
		return nil
	})
}

// GetSwipeHistory reads the remote session; while offline it serves the
// cached snapshot when it matches the requested session.
func (u *sessionUsecase) GetSwipeHistory(ctx context.Context, sessionID, userID string) ([]domain.SwipeRecord, error) {
	if sessionID == "" || userID == "" {
		return nil, errs.New(errs.InvalidArgument, "session id and user id are required")
	}
	session, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.SwipeSession, error) {
		return u.sessions.GetByID(ctx, sessionID)
	})
	if err != nil {
		if errs.IsOffline(err) {
			if records := u.historyFromCache(sessionID, userID); records != nil {
				log.Printf("[Session] Serving swipe history for %s from cache", sessionID)
				return records, nil
			}
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, errs.Newf(errs.Unauthorized, "session %s does not belong to user %s", sessionID, userID)
	}
	return session.Swipes, nil
}

func (u *sessionUsecase) historyFromCache(sessionID, userID string) []domain.SwipeRecord {
	state, err := u.cache.SessionState(userID)
	if err != nil || state == nil || state.ID != sessionID || state.UserID != userID {
		return nil
	}
	records := make([]domain.SwipeRecord, 0, len(state.Swipes))
	for _, sw := range state.Swipes {
		records = append(records, domain.SwipeRecord{
			ItemID:    sw.ItemID,
			Direction: sw.Direction,
			Timestamp: time.UnixMilli(sw.Timestamp),
		})
	}
	return records
}

// RestoreSessionFromCache returns the mirrored snapshot for userID, or
// nil. Pure local read; never fails.
func (u *sessionUsecase) RestoreSessionFromCache(userID string) *domain.CachedSessionState {
	state, err := u.cache.SessionState(userID)
	if err != nil {
		log.Printf("[Session] Failed to read cached session: %v", err)
		return nil
	}
	if state == nil || state.UserID != userID {
		return nil
	}
	return state
}

// mirrorSession best-effort copies the session into the local cache; a
// cache failure never undoes the remote write it follows.
func (u *sessionUsecase) mirrorSession(session *domain.SwipeSession) {
	if err := u.cache.SaveSessionState(domain.MirrorSession(session)); err != nil {
		log.Printf("[Session] Failed to mirror session %s: %v", session.ID, err)
	}
}
