package usecase

import (
	"context"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
	"github.com/navinavi029/Circld-sub003/internal/chat/repository"
	tradedomain "github.com/navinavi029/Circld-sub003/internal/trade/domain"
	traderepo "github.com/navinavi029/Circld-sub003/internal/trade/repository"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

const (
	maxMessageLength = 2000

	itemCacheKeyPrefix = "item:"
	userCacheKeyPrefix = "user:"
)

// chatUsecase implements ChatUsecase
type chatUsecase struct {
	conversations repository.ConversationRepository
	details       repository.DetailsRepository
	offers        traderepo.OfferRepository
	subscriber    repository.MessageSubscriber
	notifier      Notifier
	exec          *retry.Executor
	cache         *detailsCache

	// reconnect policy for live subscriptions
	reconnectBaseDelay   time.Duration
	maxReconnectAttempts int
}

// NewChatUsecase creates a new instance of chatUsecase
func NewChatUsecase(conversations repository.ConversationRepository, details repository.DetailsRepository, offers traderepo.OfferRepository, subscriber repository.MessageSubscriber, notifier Notifier, exec *retry.Executor, detailsTTL time.Duration) ChatUsecase {
	return &chatUsecase{
		conversations:        conversations,
		details:              details,
		offers:               offers,
		subscriber:           subscriber,
		notifier:             notifier,
		exec:                 exec,
		cache:                newDetailsCache(detailsTTL),
		reconnectBaseDelay:   2 * time.Second,
		maxReconnectAttempts: 5,
	}
}

func (u *chatUsecase) CreateConversation(ctx context.Context, offerID, userID string) (*domain.Conversation, error) {
	if offerID == "" || userID == "" {
		return nil, errs.New(errs.InvalidArgument, "offer id and user id are required")
	}

	offer, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*tradedomain.TradeOffer, error) {
		return u.offers.GetByID(ctx, offerID)
	})
	if err != nil {
		return nil, err
	}
	if offer.Status != tradedomain.OfferStatusAccepted {
		return nil, errs.Newf(errs.InvalidArgument, "trade offer %s is not accepted", offerID)
	}
	if userID != offer.FromUserID && userID != offer.ToUserID {
		return nil, errs.Newf(errs.Unauthorized, "user %s is not part of trade offer %s", userID, offerID)
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:             offer.ID,
		OfferID:        offer.ID,
		ParticipantIDs: []string{offer.FromUserID, offer.ToUserID},
		AnchorItemID:   offer.OfferedItemID,
		TargetItemID:   offer.RequestedItemID,
		UnreadCount:    map[string]int64{offer.FromUserID: 0, offer.ToUserID: 0},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	type outcome struct {
		conv    *domain.Conversation
		created bool
	}
	result, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (outcome, error) {
		existing, created, createErr := u.conversations.GetOrCreate(ctx, conv)
		return outcome{conv: existing, created: created}, createErr
	})
	if err != nil {
		return nil, err
	}
	if result.created {
		log.Printf("[Chat] Opened conversation %s for trade offer %s", result.conv.ID, offerID)
	}
	return result.conv, nil
}

func (u *chatUsecase) GetMessages(ctx context.Context, conversationID, userID string, limit int) ([]*domain.Message, error) {
	conv, err := u.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	return retry.DoValue(ctx, u.exec, func(ctx context.Context) ([]*domain.Message, error) {
		return u.conversations.Messages(ctx, conv.ID, limit)
	})
}

func (u *chatUsecase) SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	if conversationID == "" || senderID == "" {
		return nil, errs.New(errs.InvalidArgument, "conversation id and sender id are required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errs.Newf(errs.InvalidArgument, "message exceeds %d characters", maxMessageLength)
	}
	text = sanitizeMessageText(text)
	if text == "" {
		return nil, errs.New(errs.InvalidArgument, "message text is empty")
	}

	conv, err := u.participantConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	recipientID := conv.PartnerOf(senderID)

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		ReadBy:         []string{senderID},
		CreatedAt:      time.Now(),
	}

	err = u.exec.Do(ctx, func(ctx context.Context) error {
		return u.conversations.AddMessage(ctx, conv.ID, msg, recipientID)
	})
	if err != nil {
		return nil, err
	}

	// notification dispatch must never fail the send
	go u.notifyRecipient(conv, msg, recipientID)

	return msg, nil
}

func (u *chatUsecase) notifyRecipient(conv *domain.Conversation, msg *domain.Message, recipientID string) {
	if u.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sender := u.GetUserDetails(ctx, msg.SenderID)
	anchor := u.GetItemDetails(ctx, conv.AnchorItemID)
	target := u.GetItemDetails(ctx, conv.TargetItemID)

	err := u.notifier.CreateMessageNotification(ctx, conv.ID, msg.SenderID, sender.Name, msg.Text, recipientID, anchor.Title, target.Title)
	if err != nil {
		log.Printf("[Chat] Failed to send message notification for conversation %s: %v", conv.ID, err)
	}
}

func (u *chatUsecase) MarkConversationAsRead(ctx context.Context, conversationID, userID string) error {
	conv, err := u.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	return u.exec.Do(ctx, func(ctx context.Context) error {
		return u.conversations.MarkMessagesRead(ctx, conv.ID, userID)
	})
}

// GetItemDetails reads through the short-TTL cache. Missing items map to
// the Unknown Item default; remote failures degrade to the default
// without caching it.
func (u *chatUsecase) GetItemDetails(ctx context.Context, itemID string) domain.ItemDetails {
	var cached domain.ItemDetails
	if u.cache.get(itemCacheKeyPrefix+itemID, &cached) {
		return cached
	}

	details, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.ItemDetails, error) {
		return u.details.ItemDetails(ctx, itemID)
	})
	if err != nil {
		log.Printf("[Chat] Failed to fetch item details for %s: %v", itemID, err)
		return domain.ItemDetails{ID: itemID, Title: domain.UnknownItemTitle}
	}
	if details == nil {
		details = &domain.ItemDetails{ID: itemID, Title: domain.UnknownItemTitle}
	}
	u.cache.set(itemCacheKeyPrefix+itemID, details)
	return *details
}

// GetUserDetails is the user-side read-through twin of GetItemDetails.
func (u *chatUsecase) GetUserDetails(ctx context.Context, userID string) domain.UserDetails {
	var cached domain.UserDetails
	if u.cache.get(userCacheKeyPrefix+userID, &cached) {
		return cached
	}

	details, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.UserDetails, error) {
		return u.details.UserDetails(ctx, userID)
	})
	if err != nil {
		log.Printf("[Chat] Failed to fetch user details for %s: %v", userID, err)
		return domain.UserDetails{ID: userID, Name: domain.UnknownUserName}
	}
	if details == nil {
		details = &domain.UserDetails{ID: userID, Name: domain.UnknownUserName}
	}
	u.cache.set(userCacheKeyPrefix+userID, details)
	return *details
}

// EnrichConversations attaches display details to each conversation.
// Enrichment is concurrent per conversation and independent across
// conversations.
func (u *chatUsecase) EnrichConversations(ctx context.Context, conversations []*domain.Conversation, currentUserID string) ([]*domain.ConversationWithDetails, error) {
	if currentUserID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}
	for _, conv := range conversations {
		if !conv.HasParticipant(currentUserID) {
			return nil, errs.Newf(errs.Unauthorized, "user %s is not a participant of conversation %s", currentUserID, conv.ID)
		}
	}

	enriched := make([]*domain.ConversationWithDetails, len(conversations))
	var wg sync.WaitGroup
	for i, conv := range conversations {
		wg.Add(1)
		go func(i int, conv *domain.Conversation) {
			defer wg.Done()
			entry := &domain.ConversationWithDetails{Conversation: conv}

			var inner sync.WaitGroup
			inner.Add(3)
			go func() {
				defer inner.Done()
				entry.AnchorItem = u.GetItemDetails(ctx, conv.AnchorItemID)
			}()
			go func() {
				defer inner.Done()
				entry.TargetItem = u.GetItemDetails(ctx, conv.TargetItemID)
			}()
			go func() {
				defer inner.Done()
				entry.Partner = u.GetUserDetails(ctx, conv.PartnerOf(currentUserID))
			}()
			inner.Wait()

			enriched[i] = entry
		}(i, conv)
	}
	wg.Wait()
	return enriched, nil
}

func (u *chatUsecase) GetUserConversationsWithDetails(ctx context.Context, userID string) ([]*domain.ConversationWithDetails, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}
	conversations, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) ([]*domain.Conversation, error) {
		return u.conversations.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return u.EnrichConversations(ctx, conversations, userID)
}

func (u *chatUsecase) participantConversation(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	if conversationID == "" || userID == "" {
		return nil, errs.New(errs.InvalidArgument, "conversation id and user id are required")
	}
	conv, err := retry.DoValue(ctx, u.exec, func(ctx context.Context) (*domain.Conversation, error) {
		return u.conversations.GetByID(ctx, conversationID)
	})
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, errs.Newf(errs.Unauthorized, "user %s is not a participant of conversation %s", userID, conversationID)
	}
	return conv, nil
}
