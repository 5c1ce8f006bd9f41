// Package apperrors defines the closed failure taxonomy for the booking
// engine. Services return these instead of bare fmt.Errorf values so that
// controllers can map every failure to exactly one HTTP status and callers
// can tell retryable failures (lock timeouts) apart from permanent ones
// (slot conflicts) without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies the failure category.
type Kind int

const (
	KindValidation Kind = iota
	KindBookingWindowExceeded
	KindLockTimeout
	KindSlotUnavailable
	KindUserConflict
	KindMaintenanceWindow
	KindNotFound
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindBookingWindowExceeded:
		return "BOOKING_WINDOW_EXCEEDED"
	case KindLockTimeout:
		return "LOCK_TIMEOUT"
	case KindSlotUnavailable:
		return "SLOT_UNAVAILABLE"
	case KindUserConflict:
		return "USER_CONFLICT"
	case KindMaintenanceWindow:
		return "MAINTENANCE_WINDOW"
	case KindNotFound:
		return "NOT_FOUND"
	}
	return "UNKNOWN"
}

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or ok=false if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsRetryable reports whether the caller may safely retry the operation
// after a short backoff. Only lock timeouts qualify; slot conflicts are
// permanent for the requested interval.
func IsRetryable(err error) bool {
	return Is(err, KindLockTimeout)
}
