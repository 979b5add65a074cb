// Package ratelimit bounds how often a user may perform a given action.
// The swipe usecase consults it before every remote write.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result reports whether the action is allowed and how much quota is left
// in the current window.
type Result struct {
	Allowed   bool
	Remaining int
}

// Limiter is the contract the usecases depend on. Check is advisory: it
// consumes nothing, so two swipes racing for the last token can both
// pass. Quota is only spent by RecordAction once the swipe has been
// durably recorded, so a failed swipe never burns quota. The window is
// a soft bound; an off-by-one under contention is acceptable for an
// abuse limit.
type Limiter interface {
	Check(userID, actionType string) Result
	RecordAction(userID, actionType string)
}

type userLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	limiters map[string]*rate.Limiter
}

// New returns a Limiter allowing limit actions per user per window,
// refilled continuously.
func New(limit int, window time.Duration) Limiter {
	return &userLimiter{
		limit:    limit,
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *userLimiter) limiterFor(userID, actionType string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := userID + ":" + actionType
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
		l.limiters[key] = lim
	}
	return lim
}

func (l *userLimiter) Check(userID, actionType string) Result {
	lim := l.limiterFor(userID, actionType)
	tokens := lim.Tokens()
	// whole tokens only; the fractional refill is not spendable quota
	remaining := int(math.Floor(tokens))
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: tokens >= 1, Remaining: remaining}
}

func (l *userLimiter) RecordAction(userID, actionType string) {
	l.limiterFor(userID, actionType).Allow()
}
