// Package errs defines the error taxonomy shared by the trade and chat
// layers. Every failure crossing a usecase boundary is classified at the
// point the underlying I/O call fails, so callers never have to inspect
// message text to decide between retrying, queueing and giving up.
package errs

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind partitions errors by how callers must react to them.
type Kind int

const (
	// Unknown errors propagate as-is and are never retried.
	Unknown Kind = iota
	// InvalidArgument marks missing or malformed input. Fatal.
	InvalidArgument
	// NotFound marks an absent session, conversation or item. Fatal.
	NotFound
	// Unauthorized marks a failed ownership or participant check. Fatal.
	Unauthorized
	// RateLimited marks an exhausted swipe quota. Fatal, carries the
	// remaining-quota context in the message.
	RateLimited
	// Offline marks a transient connectivity failure. Retryable, and the
	// swipe-write path additionally falls back to local queueing.
	Offline
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case RateLimited:
		return "rate_limited"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// Error carries the classification flags alongside the underlying cause.
type Error struct {
	Kind      Kind
	Retryable bool
	Offline   bool
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return e.Msg + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a fatal error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a fatal error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// OfflineErr wraps a transient connectivity failure.
func OfflineErr(msg string, err error) *Error {
	return &Error{Kind: Offline, Retryable: true, Offline: true, Msg: msg, Err: err}
}

// FromRemote classifies an error returned by the remote document store.
// Classification keys off the gRPC status code carried by the Firestore
// client, never off message text.
func FromRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return &Error{Kind: Offline, Retryable: true, Offline: true, Msg: op, Err: err}
	case codes.NotFound:
		return &Error{Kind: NotFound, Msg: op, Err: err}
	case codes.PermissionDenied, codes.Unauthenticated:
		return &Error{Kind: Unauthorized, Msg: op, Err: err}
	case codes.InvalidArgument:
		return &Error{Kind: InvalidArgument, Msg: op, Err: err}
	default:
		return &Error{Kind: Unknown, Msg: op, Err: err}
	}
}

// KindOf returns the classified kind, or Unknown for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// IsRetryable reports whether the retry executor may re-attempt the
// operation that produced err.
func IsRetryable(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// IsOffline reports whether err was classified as a connectivity loss.
func IsOffline(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Offline
	}
	return false
}
