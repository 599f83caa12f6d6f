// Package apperr defines the failure taxonomy shared by every store
// adapter and service in the pipeline. Adapters type raw failures into one
// of the kinds below; callers branch on the kind, never on adapter
// internals.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match with errors.Is.
var (
	// ErrClient marks bad or missing caller input. Never retried.
	ErrClient = errors.New("invalid input")
	// ErrNotFound marks an absent referenced entity. Never retried.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a transient external-service failure. Safe to
	// retry with backoff on idempotent operations.
	ErrUnavailable = errors.New("service unavailable")
	// ErrRejected marks a validation failure by an external store. Never
	// retried unmodified.
	ErrRejected = errors.New("rejected by store")
	// ErrDegraded marks a partial ingestion success: the canonical write
	// landed but the index did not. Self-heals via reconciliation.
	ErrDegraded = errors.New("search indexing incomplete")
)

// Error carries a kind sentinel, the failing operation, and the cause.
type Error struct {
	kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

func newError(kind error, op string, err error) *Error {
	return &Error{kind: kind, Op: op, Err: err}
}

func Client(op string, err error) *Error      { return newError(ErrClient, op, err) }
func NotFound(op string, err error) *Error    { return newError(ErrNotFound, op, err) }
func Unavailable(op string, err error) *Error { return newError(ErrUnavailable, op, err) }
func Rejected(op string, err error) *Error    { return newError(ErrRejected, op, err) }
func Degraded(op string, err error) *Error    { return newError(ErrDegraded, op, err) }

// Retryable reports whether err may be retried with backoff. Only
// transient unavailability qualifies.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
