package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

const (
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

// conversationRepository implements ConversationRepository on Firestore
type conversationRepository struct {
	client *firestore.Client
}

// NewConversationRepository creates a new instance of conversationRepository
func NewConversationRepository(client *firestore.Client) ConversationRepository {
	return &conversationRepository{client: client}
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, bool, error) {
	ref := r.client.Collection(conversationsCollection).Doc(conv.ID)

	var result *domain.Conversation
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result, created = nil, false
		snap, err := tx.Get(ref)
		if err == nil {
			var existing domain.Conversation
			if err := snap.DataTo(&existing); err != nil {
				return err
			}
			existing.ID = snap.Ref.ID
			result = &existing
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		created = true
		result = conv
		return tx.Set(ref, conv)
	})
	if err != nil {
		return nil, false, errs.FromRemote("get or create conversation", err)
	}
	return result, created, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	snap, err := r.client.Collection(conversationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.Newf(errs.NotFound, "conversation %s not found", id)
		}
		return nil, errs.FromRemote("get conversation", err)
	}
	var conv domain.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, errs.FromRemote("decode conversation", err)
	}
	conv.ID = snap.Ref.ID
	return &conv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	iter := r.client.Collection(conversationsCollection).
		Where("participantIds", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var conversations []*domain.Conversation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.FromRemote("list conversations", err)
		}
		var conv domain.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return nil, errs.FromRemote("decode conversation", err)
		}
		conv.ID = doc.Ref.ID
		conversations = append(conversations, &conv)
	}
	return conversations, nil
}

// AddMessage keeps the message write and the conversation's preview and
// unread counter in one transaction, as the inbox list depends on them
// agreeing.
func (r *conversationRepository) AddMessage(ctx context.Context, conversationID string, msg *domain.Message, recipientID string) error {
	convRef := r.client.Collection(conversationsCollection).Doc(conversationID)
	msgRef := convRef.Collection(messagesCollection).Doc(msg.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(convRef); err != nil {
			return err
		}
		if err := tx.Create(msgRef, msg); err != nil {
			return err
		}
		return tx.Update(convRef, []firestore.Update{
			{Path: "lastMessageText", Value: msg.Text},
			{Path: "lastMessageAt", Value: firestore.ServerTimestamp},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
			{Path: "unreadCount." + recipientID, Value: firestore.Increment(1)},
		})
	})
	return errs.FromRemote("add message", err)
}

func (r *conversationRepository) Messages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	q := r.client.Collection(conversationsCollection).Doc(conversationID).
		Collection(messagesCollection).
		OrderBy("createdAt", firestore.Asc)
	if limit > 0 {
		q = q.LimitToLast(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()
	var messages []*domain.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.FromRemote("list messages", err)
		}
		var msg domain.Message
		if err := doc.DataTo(&msg); err != nil {
			return nil, errs.FromRemote("decode message", err)
		}
		msg.ID = doc.Ref.ID
		messages = append(messages, &msg)
	}
	return messages, nil
}

func (r *conversationRepository) MarkMessagesRead(ctx context.Context, conversationID, userID string) error {
	convRef := r.client.Collection(conversationsCollection).Doc(conversationID)
	iter := convRef.Collection(messagesCollection).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errs.FromRemote("scan messages for read marks", err)
		}
		var msg domain.Message
		if err := doc.DataTo(&msg); err != nil {
			continue
		}
		alreadyRead := false
		for _, id := range msg.ReadBy {
			if id == userID {
				alreadyRead = true
				break
			}
		}
		if alreadyRead {
			continue
		}
		if _, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: "readBy", Value: firestore.ArrayUnion(userID)},
		}); err != nil {
			return errs.FromRemote("mark message read", err)
		}
	}
	bw.End()

	_, err := convRef.Update(ctx, []firestore.Update{
		{Path: "unreadCount." + userID, Value: 0},
	})
	return errs.FromRemote("reset unread counter", err)
}
