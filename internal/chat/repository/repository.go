package repository

import (
	"context"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
)

// ConversationRepository persists conversations and their messages.
type ConversationRepository interface {
	// GetOrCreate returns the conversation for conv.ID, creating it from
	// conv when absent. created reports whether a create happened.
	GetOrCreate(ctx context.Context, conv *domain.Conversation) (result *domain.Conversation, created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error)
	// AddMessage writes the message and, in the same transaction,
	// updates the conversation preview and increments the recipient's
	// unread counter.
	AddMessage(ctx context.Context, conversationID string, msg *domain.Message, recipientID string) error
	Messages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error)
	// MarkMessagesRead adds userID to the read-by set of every message
	// not already containing it, then zeroes the user's unread counter.
	MarkMessagesRead(ctx context.Context, conversationID, userID string) error
}

// DetailsRepository reads the item/user documents backing conversation
// enrichment. A missing document yields (nil, nil).
type DetailsRepository interface {
	ItemDetails(ctx context.Context, itemID string) (*domain.ItemDetails, error)
	UserDetails(ctx context.Context, userID string) (*domain.UserDetails, error)
}

// MessageSubscriber delivers live message updates for one conversation.
type MessageSubscriber interface {
	// Listen blocks, invoking handler with the current message list on
	// every change, until ctx is cancelled or delivery fails.
	Listen(ctx context.Context, conversationID string, handler func([]*domain.Message)) error
}
