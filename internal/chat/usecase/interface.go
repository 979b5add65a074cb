package usecase

import (
	"context"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
)

// Notifier dispatches a push notification for a new message. Dispatch is
// fire-and-forget; failures never fail the send.
type Notifier interface {
	CreateMessageNotification(ctx context.Context, conversationID, senderID, senderName, text, recipientID, anchorTitle, targetTitle string) error
}

// ChatUsecase defines the interface for conversation use cases
type ChatUsecase interface {
	// CreateConversation opens (or returns) the conversation for an
	// accepted trade offer. Idempotent per offer.
	CreateConversation(ctx context.Context, offerID, userID string) (*domain.Conversation, error)
	GetMessages(ctx context.Context, conversationID, userID string, limit int) ([]*domain.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error)
	MarkConversationAsRead(ctx context.Context, conversationID, userID string) error
	GetItemDetails(ctx context.Context, itemID string) domain.ItemDetails
	GetUserDetails(ctx context.Context, userID string) domain.UserDetails
	EnrichConversations(ctx context.Context, conversations []*domain.Conversation, currentUserID string) ([]*domain.ConversationWithDetails, error)
	GetUserConversationsWithDetails(ctx context.Context, userID string) ([]*domain.ConversationWithDetails, error)
	// SubscribeToMessages sets up a live subscription with supervised
	// reconnection. Setup is asynchronous and best-effort: a failed
	// authorization check is logged, never thrown. The returned function
	// deactivates reconnection and tears down the channel.
	SubscribeToMessages(conversationID, userID string, callback func([]*domain.Message)) func()
}
