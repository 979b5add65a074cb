package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

const sessionsCollection = "swipeSessions"

// sessionRepository implements SessionRepository on Firestore
type sessionRepository struct {
	client *firestore.Client
}

// NewSessionRepository creates a new instance of sessionRepository
func NewSessionRepository(client *firestore.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.SwipeSession) error {
	_, err := r.client.Collection(sessionsCollection).Doc(session.ID).Set(ctx, session)
	return errs.FromRemote("create session", err)
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.SwipeSession, error) {
	snap, err := r.client.Collection(sessionsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.Newf(errs.NotFound, "session %s not found", id)
		}
		return nil, errs.FromRemote("get session", err)
	}
	var session domain.SwipeSession
	if err := snap.DataTo(&session); err != nil {
		return nil, errs.FromRemote("decode session", err)
	}
	session.ID = snap.Ref.ID
	return &session, nil
}

// UpsertSwipe rewrites the swipes array inside a transaction, dropping
// any previous record for the same item before adding the new one. The
// transaction keeps concurrent swipes on the same session safe: a
// contended commit retries against the other writer's result, so swipes
// on different items both persist and a re-swipe still ends up as one
// record.
func (r *sessionRepository) UpsertSwipe(ctx context.Context, sessionID string, record domain.SwipeRecord) error {
	ref := r.client.Collection(sessionsCollection).Doc(sessionID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var session domain.SwipeSession
		if err := snap.DataTo(&session); err != nil {
			return err
		}
		swipes := make([]domain.SwipeRecord, 0, len(session.Swipes)+1)
		for _, sw := range session.Swipes {
			if sw.ItemID != record.ItemID {
				swipes = append(swipes, sw)
			}
		}
		swipes = append(swipes, record)
		return tx.Update(ref, []firestore.Update{
			{Path: "swipes", Value: swipes},
			{Path: "lastActivityAt", Value: firestore.ServerTimestamp},
		})
	})
	return errs.FromRemote("upsert swipe", err)
}

func (r *sessionRepository) RemoveSwipe(ctx context.Context, sessionID string, record domain.SwipeRecord) error {
	_, err := r.client.Collection(sessionsCollection).Doc(sessionID).Update(ctx, []firestore.Update{
		{Path: "swipes", Value: firestore.ArrayRemove(record)},
		{Path: "lastActivityAt", Value: firestore.ServerTimestamp},
	})
	return errs.FromRemote("remove swipe", err)
}

func (r *sessionRepository) ClearSwipes(ctx context.Context, sessionID string) error {
	_, err := r.client.Collection(sessionsCollection).Doc(sessionID).Update(ctx, []firestore.Update{
		{Path: "swipes", Value: []domain.SwipeRecord{}},
		{Path: "lastActivityAt", Value: firestore.ServerTimestamp},
	})
	return errs.FromRemote("clear swipes", err)
}

func (r *sessionRepository) SetCurrent(ctx context.Context, userID, sessionID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"currentSessionId": sessionID,
	}, firestore.MergeAll)
	return errs.FromRemote("set current session", err)
}
