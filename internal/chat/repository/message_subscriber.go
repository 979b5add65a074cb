package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

// messageSubscriber implements MessageSubscriber on Firestore query
// snapshots.
type messageSubscriber struct {
	client *firestore.Client
}

// NewMessageSubscriber creates a new instance of messageSubscriber
func NewMessageSubscriber(client *firestore.Client) MessageSubscriber {
	return &messageSubscriber{client: client}
}

func (s *messageSubscriber) Listen(ctx context.Context, conversationID string, handler func([]*domain.Message)) error {
	snapshots := s.client.Collection(conversationsCollection).Doc(conversationID).
		Collection(messagesCollection).
		OrderBy("createdAt", firestore.Asc).
		Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			return errs.FromRemote("message subscription", err)
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errs.FromRemote("read message snapshot", err)
		}
		messages := make([]*domain.Message, 0, len(docs))
		for _, doc := range docs {
			var msg domain.Message
			if err := doc.DataTo(&msg); err != nil {
				continue
			}
			msg.ID = doc.Ref.ID
			messages = append(messages, &msg)
		}
		handler(messages)
	}
}
