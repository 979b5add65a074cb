package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
	tradedomain "github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/retry"
)

func fastRetry() *retry.Executor {
	return &retry.Executor{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

// fakeConvRepo mimics the conversations collection and its message
// subcollection.
type fakeConvRepo struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	messages      map[string][]*domain.Message
	createCalls   int
	getErr        error
	addErr        error
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]*domain.Message),
	}
}

func (f *fakeConvRepo) add(conv *domain.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversations[conv.ID] = conv
}

func (f *fakeConvRepo) GetOrCreate(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.conversations[conv.ID]; ok {
		clone := *existing
		return &clone, false, nil
	}
	f.createCalls++
	clone := *conv
	f.conversations[conv.ID] = &clone
	result := clone
	return &result, true, nil
}

func (f *fakeConvRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	conv, ok := f.conversations[id]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "conversation %s not found", id)
	}
	clone := *conv
	return &clone, nil
}

func (f *fakeConvRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Conversation
	for _, conv := range f.conversations {
		if conv.HasParticipant(userID) {
			clone := *conv
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeConvRepo) AddMessage(ctx context.Context, conversationID string, msg *domain.Message, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	conv, ok := f.conversations[conversationID]
	if !ok {
		return errs.Newf(errs.NotFound, "conversation %s not found", conversationID)
	}
	clone := *msg
	f.messages[conversationID] = append(f.messages[conversationID], &clone)
	conv.LastMessageText = msg.Text
	conv.LastMessageAt = msg.CreatedAt
	conv.UpdatedAt = msg.CreatedAt
	if conv.UnreadCount == nil {
		conv.UnreadCount = make(map[string]int64)
	}
	conv.UnreadCount[recipientID]++
	return nil
}

func (f *fakeConvRepo) Messages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*domain.Message, len(msgs))
	for i, m := range msgs {
		clone := *m
		out[i] = &clone
	}
	return out, nil
}

func (f *fakeConvRepo) MarkMessagesRead(ctx context.Context, conversationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[conversationID]
	if !ok {
		return errs.Newf(errs.NotFound, "conversation %s not found", conversationID)
	}
	for _, msg := range f.messages[conversationID] {
		seen := false
		for _, id := range msg.ReadBy {
			if id == userID {
				seen = true
				break
			}
		}
		if !seen {
			msg.ReadBy = append(msg.ReadBy, userID)
		}
	}
	if conv.UnreadCount == nil {
		conv.UnreadCount = make(map[string]int64)
	}
	conv.UnreadCount[userID] = 0
	return nil
}

// fakeDetailsRepo counts reads so cache behavior is observable.
type fakeDetailsRepo struct {
	mu        sync.Mutex
	items     map[string]*domain.ItemDetails
	users     map[string]*domain.UserDetails
	itemErr   error
	userErr   error
	itemReads int
	userReads int
}

func newFakeDetailsRepo() *fakeDetailsRepo {
	return &fakeDetailsRepo{
		items: make(map[string]*domain.ItemDetails),
		users: make(map[string]*domain.UserDetails),
	}
}

func (f *fakeDetailsRepo) ItemDetails(ctx context.Context, itemID string) (*domain.ItemDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemReads++
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	details, ok := f.items[itemID]
	if !ok {
		return nil, nil
	}
	clone := *details
	return &clone, nil
}

func (f *fakeDetailsRepo) UserDetails(ctx context.Context, userID string) (*domain.UserDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userReads++
	if f.userErr != nil {
		return nil, f.userErr
	}
	details, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	clone := *details
	return &clone, nil
}

// fakeOfferRepo holds trade offers keyed by id.
type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*tradedomain.TradeOffer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]*tradedomain.TradeOffer)}
}

func (f *fakeOfferRepo) add(offer *tradedomain.TradeOffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers[offer.ID] = offer
}

func (f *fakeOfferRepo) Upsert(ctx context.Context, offer *tradedomain.TradeOffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *offer
	f.offers[offer.ID] = &clone
	return nil
}

func (f *fakeOfferRepo) GetByID(ctx context.Context, id string) (*tradedomain.TradeOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer, ok := f.offers[id]
	if !ok {
		return nil, errs.Newf(errs.NotFound, "trade offer %s not found", id)
	}
	clone := *offer
	return &clone, nil
}

// fakeSubscriber simulates a live channel: each Listen call consumes one
// scripted result, either a batch delivery followed by blocking until
// cancellation, or an immediate failure.
type fakeSubscriber struct {
	mu      sync.Mutex
	script  []listenStep
	calls   int
	blocked chan struct{}
}

type listenStep struct {
	deliver []*domain.Message
	err     error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{blocked: make(chan struct{}, 16)}
}

func (f *fakeSubscriber) Listen(ctx context.Context, conversationID string, handler func([]*domain.Message)) error {
	f.mu.Lock()
	f.calls++
	var step listenStep
	if len(f.script) > 0 {
		step = f.script[0]
		f.script = f.script[1:]
	}
	f.mu.Unlock()

	if step.err != nil {
		return step.err
	}
	if step.deliver != nil {
		handler(step.deliver)
	}
	f.blocked <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeSubscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeNotifier records dispatched notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	err   error
	fired chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{fired: make(chan struct{}, 16)}
}

func (f *fakeNotifier) CreateMessageNotification(ctx context.Context, conversationID, senderID, senderName, text, recipientID, anchorTitle, targetTitle string) error {
	f.mu.Lock()
	f.sent = append(f.sent, recipientID)
	err := f.err
	f.mu.Unlock()
	f.fired <- struct{}{}
	return err
}

func (f *fakeNotifier) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}
