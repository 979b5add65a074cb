package notification

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

const tokensCollection = "fcmTokens"

// FCMToken is one registered device token.
type FCMToken struct {
	UserID     string    `firestore:"userId" json:"user_id"`
	Token      string    `firestore:"token" json:"token"`
	DeviceInfo string    `firestore:"deviceInfo" json:"device_info"`
	UpdatedAt  time.Time `firestore:"updatedAt" json:"updated_at"`
}

// FCMTokenRepository defines the interface for FCM token operations
type FCMTokenRepository interface {
	SaveToken(ctx context.Context, userID, token, deviceInfo string) error
	GetTokensByUserID(ctx context.Context, userID string) ([]FCMToken, error)
	DeleteToken(ctx context.Context, token string) error
}

type fcmTokenRepository struct {
	client *firestore.Client
}

// NewFCMTokenRepository creates a new instance of fcmTokenRepository
func NewFCMTokenRepository(client *firestore.Client) FCMTokenRepository {
	return &fcmTokenRepository{client: client}
}

// SaveToken upserts a device token. The token itself keys the document,
// so re-registering a token from a new account reassigns it.
func (r *fcmTokenRepository) SaveToken(ctx context.Context, userID, token, deviceInfo string) error {
	_, err := r.client.Collection(tokensCollection).Doc(token).Set(ctx, FCMToken{
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		return errs.FromRemote("save fcm token", err)
	}
	return nil
}

func (r *fcmTokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]FCMToken, error) {
	iter := r.client.Collection(tokensCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var tokens []FCMToken
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.FromRemote("list fcm tokens", err)
		}
		var token FCMToken
		if err := doc.DataTo(&token); err != nil {
			return nil, errs.FromRemote("decode fcm token", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (r *fcmTokenRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.client.Collection(tokensCollection).Doc(token).Delete(ctx)
	if err != nil {
		return errs.FromRemote("delete fcm token", err)
	}
	return nil
}
