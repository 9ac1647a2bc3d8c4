package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and retry decisions.
type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindConflict        Kind = "CONFLICT"
	KindPartialFailure  Kind = "PARTIAL_FAILURE"
	KindUpstream        Kind = "UPSTREAM_FAILURE"
	KindTimeout         Kind = "TIMEOUT"
	KindInternal        Kind = "INTERNAL"
)

// Error is the application error carried across layers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an application error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap wraps an existing error with a classification.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether an idempotent operation that failed with err may be retried.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindTimeout || k == KindUpstream
}

// FromStore classifies a raw data store error. Errors already classified are returned as is.
func FromStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTimeout, op+": data store timeout", err)
	}
	return Wrap(KindUpstream, op+": data store failure", err)
}

// Common errors.
var (
	ErrUnauthenticated  = New(KindUnauthenticated, "authentication required")
	ErrForbidden        = New(KindForbidden, "insufficient privilege")
	ErrUserNotFound     = New(KindNotFound, "user not found")
	ErrArticleNotFound  = New(KindNotFound, "article not found")
	ErrPublisherMissing = New(KindNotFound, "publisher not found")
)
