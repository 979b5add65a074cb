// Package retry wraps fallible remote operations with bounded
// exponential-backoff retry. Only errors classified as retryable by
// pkg/errs are re-attempted; validation and authorization failures
// surface immediately.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

// OnRetry is invoked before each re-attempt. attempt is the number of the
// attempt that just failed, starting at 1.
type OnRetry func(attempt int, err error)

// Executor holds the retry policy. The zero value is unusable; construct
// with New or set every field.
type Executor struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	OnRetry     OnRetry
}

// New returns an Executor with the default policy used for remote store
// calls: 3 attempts, 200ms base delay, 5s cap.
func New() *Executor {
	return &Executor{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Do runs op, retrying on retryable failures until MaxAttempts is
// exhausted. The last error is returned unchanged so callers can match on
// its classification.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !errs.IsRetryable(lastErr) || attempt == e.MaxAttempts {
			return lastErr
		}
		if e.OnRetry != nil {
			e.OnRetry(attempt, lastErr)
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(e.backoff(attempt)):
		}
	}
	return lastErr
}

// backoff doubles the base delay per failed attempt and adds up to 25%
// jitter, capped at MaxDelay.
func (e *Executor) backoff(attempt int) time.Duration {
	d := e.BaseDelay << (attempt - 1)
	if e.MaxDelay > 0 && d > e.MaxDelay {
		d = e.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	d += jitter
	if e.MaxDelay > 0 && d > e.MaxDelay {
		d = e.MaxDelay
	}
	return d
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
