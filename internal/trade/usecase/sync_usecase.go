package usecase

import (
	"context"
	"log"
	"time"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/internal/trade/repository"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

// syncUsecase implements SyncUsecase
type syncUsecase struct {
	sessions repository.SessionRepository
	items    repository.ItemRepository
	offers   repository.OfferRepository
	cache    repository.CacheRepository
	exec     *retry.Executor
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(sessions repository.SessionRepository, items repository.ItemRepository, offers repository.OfferRepository, cache repository.CacheRepository, exec *retry.Executor) SyncUsecase {
	return &syncUsecase{sessions: sessions, items: items, offers: offers, cache: cache, exec: exec}
}

// SyncPendingSwipes replays queued swipes strictly one at a time so the
// remote swipe history keeps its order. An entry leaves the queue only
// after its own replay succeeds; a transiently failing entry stays for
// the next pass. Entries whose session is gone or belongs to someone
// else can never succeed and are dropped with a warning.
func (u *syncUsecase) SyncPendingSwipes(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errs.New(errs.InvalidArgument, "user id is required")
	}

	pending, err := u.cache.PendingSwipes(userID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	log.Printf("[Sync] Replaying %d pending swipes for user %s", len(pending), userID)

	replayed := 0
	var lastSession *domain.SwipeSession
	for _, entry := range pending {
		session, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.SwipeSession, error) {
			return u.sessions.GetByID(ctx, entry.SessionID)
		})
		if err != nil {
			if errs.KindOf(err) == errs.NotFound {
				log.Printf("[Sync] Session %s no longer exists, dropping queued swipe on %s", entry.SessionID, entry.ItemID)
				u.dropEntry(userID, entry)
				continue
			}
			log.Printf("[Sync] Could not validate session %s, keeping queued swipe on %s: %v", entry.SessionID, entry.ItemID, err)
			continue
		}
		if session.UserID != entry.UserID {
			log.Printf("[Sync] Session %s was superseded, dropping queued swipe on %s", entry.SessionID, entry.ItemID)
			u.dropEntry(userID, entry)
			continue
		}

		record := domain.SwipeRecord{
			ItemID:    entry.ItemID,
			Direction: entry.Direction,
			Timestamp: time.UnixMilli(entry.Timestamp),
		}
		err = u.exec.Do(ctx, func(ctx context.Context) error {
			return u.sessions.UpsertSwipe(ctx, entry.SessionID, record)
		})
		if err != nil {
			log.Printf("[Sync] Replay failed for swipe on %s, keeping it queued: %v", entry.ItemID, err)
			continue
		}
		// a replayed like still owes its trade offer; the deterministic
		// offer id keeps this idempotent against the online path
		if entry.Direction == domain.SwipeRight {
			upsertLikeOffer(ctx, u.exec, u.items, u.offers, session, entry.ItemID, record.Timestamp)
		}
		if err := u.cache.RemovePendingSwipe(userID, entry); err != nil {
			log.Printf("[Sync] Failed to dequeue replayed swipe on %s: %v", entry.ItemID, err)
		}
		replayed++
		lastSession = session
	}

	if lastSession != nil {
		u.refreshMirror(ctx, userID, lastSession.ID)
	}

	log.Printf("[Sync] Replayed %d of %d pending swipes for user %s", replayed, len(pending), userID)
	return replayed, nil
}

func (u *syncUsecase) dropEntry(userID string, entry domain.CachedSwipe) {
	if err := u.cache.RemovePendingSwipe(userID, entry); err != nil {
		log.Printf("[Sync] Failed to drop stale queued swipe on %s: %v", entry.ItemID, err)
	}
}

// refreshMirror re-reads the session after replay so the local snapshot
// reflects the server-assigned state again. Best effort.
func (u *syncUsecase) refreshMirror(ctx context.Context, userID, sessionID string) {
	session, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.SwipeSession, error) {
		return u.sessions.GetByID(ctx, sessionID)
	})
	if err != nil {
		log.Printf("[Sync] Could not refresh session mirror after replay: %v", err)
		return
	}
	if session.UserID != userID {
		return
	}
	if err := u.cache.SaveSessionState(domain.MirrorSession(session)); err != nil {
		log.Printf("[Sync] Failed to refresh session mirror: %v", err)
	}
}
