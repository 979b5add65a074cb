package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/navinavi029/Circld-sub003/pkg/fcm"
)

const maxPreviewLength = 120

// Service pushes new-message notifications to the recipient's registered
// devices. All failures are logged, none are surfaced to the send path.
type Service struct {
	fcmClient *fcm.Client
	tokens    FCMTokenRepository
}

func NewService(fcmClient *fcm.Client, tokens FCMTokenRepository) *Service {
	return &Service{fcmClient: fcmClient, tokens: tokens}
}

// CreateMessageNotification delivers a chat message push to every device
// of the recipient and prunes tokens FCM reports as dead.
func (s *Service) CreateMessageNotification(ctx context.Context, conversationID, senderID, senderName, text, recipientID, anchorTitle, targetTitle string) error {
	if s.fcmClient == nil {
		log.Printf("[FCM] Client not available, skipping push for conversation %s", conversationID)
		return nil
	}

	tokens, err := s.tokens.GetTokensByUserID(ctx, recipientID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		log.Printf("[FCM] No tokens found for user %s, skipping push notification", recipientID)
		return nil
	}

	tokenStrings := make([]string, len(tokens))
	for i, token := range tokens {
		tokenStrings[i] = token.Token
	}

	preview := text
	if len(preview) > maxPreviewLength {
		preview = preview[:maxPreviewLength] + "..."
	}

	failedTokens, err := s.fcmClient.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title: fmt.Sprintf("New message from %s", senderName),
		Body:  preview,
		Data: map[string]string{
			"type":           "chat_message",
			"conversationId": conversationID,
			"senderId":       senderID,
			"tradeSummary":   fmt.Sprintf("%s for %s", anchorTitle, targetTitle),
			"click_action":   "/chat/" + conversationID,
		},
	})
	if err != nil {
		return err
	}
	log.Printf("[FCM] Successfully sent to %d devices", len(tokens)-len(failedTokens))

	if len(failedTokens) > 0 {
		log.Printf("[FCM] Cleaning up %d failed tokens", len(failedTokens))
		for _, token := range failedTokens {
			if err := s.tokens.DeleteToken(ctx, token); err != nil {
				log.Printf("[FCM] Failed to delete token: %v", err)
			}
		}
	}
	return nil
}
