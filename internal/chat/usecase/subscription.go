package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
)

// subscription supervises one live message channel. It owns the
// cancellation of the underlying listener and an active flag so a
// teardown during a reconnect backoff stops the loop cleanly.
type subscription struct {
	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

func (s *subscription) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) setCancel(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = cancel
}

func (s *subscription) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	if s.cancel != nil {
		s.cancel()
	}
}

func (u *chatUsecase) SubscribeToMessages(conversationID, userID string, callback func([]*domain.Message)) func() {
	sub := &subscription{active: true}

	go func() {
		// best-effort authorization: a user outside the conversation gets
		// no channel, and the failure is only logged
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		_, err := u.participantConversation(ctx, conversationID, userID)
		cancel()
		if err != nil {
			log.Printf("[Chat] Subscription to conversation %s rejected for user %s: %v", conversationID, userID, err)
			sub.stop()
			return
		}
		u.superviseListen(sub, conversationID, callback)
	}()

	return sub.stop
}

// superviseListen keeps the listener alive across transient failures,
// backing off linearly between attempts. A delivery resets the attempt
// counter so a long-lived channel can survive repeated blips.
func (u *chatUsecase) superviseListen(sub *subscription, conversationID string, callback func([]*domain.Message)) {
	attempt := 0
	for sub.isActive() {
		ctx, cancel := context.WithCancel(context.Background())
		sub.setCancel(cancel)

		delivered := false
		err := u.subscriber.Listen(ctx, conversationID, func(messages []*domain.Message) {
			delivered = true
			if sub.isActive() {
				callback(messages)
			}
		})
		cancel()

		if !sub.isActive() {
			return
		}
		if delivered {
			attempt = 0
		}
		attempt++
		if attempt > u.maxReconnectAttempts {
			log.Printf("[Chat] Giving up on conversation %s subscription after %d attempts: %v", conversationID, u.maxReconnectAttempts, err)
			sub.stop()
			return
		}

		delay := time.Duration(attempt) * u.reconnectBaseDelay
		log.Printf("[Chat] Subscription to conversation %s dropped (attempt %d): %v, reconnecting in %s", conversationID, attempt, err, delay)
		time.Sleep(delay)
	}
}
