package bookings

import (
	"strings"
	"time"

	"courtly/internal/shared/apperrors"
)

// Status is the closed set of booking lifecycle states.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusPaid       Status = "PAID"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// ParseStatus is the single normalization point for status input. Callers
// must never remap status strings themselves.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusPaid:
		return StatusPaid, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusNoShow:
		return StatusNoShow, nil
	}
	return "", apperrors.Newf(apperrors.KindValidation, "unknown booking status %q", raw)
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransitionTo encodes the lifecycle state machine:
// PENDING -> PAID -> IN_PROGRESS -> COMPLETED, with CANCELLED reachable
// from PENDING, PAID and IN_PROGRESS, and NO_SHOW from IN_PROGRESS.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusNoShow || next == StatusCancelled
	}
	return false
}

// BlockingStatuses are the statuses that count toward conflict detection.
// PENDING only blocks while unexpired; the repository applies the expiry
// predicate alongside this list.
var BlockingStatuses = []Status{StatusPending, StatusPaid, StatusInProgress}

// Kind discriminates booking variants once at the API boundary.
type Kind string

const (
	// KindStandard is a user-initiated reservation.
	KindStandard Kind = "STANDARD"
	// KindAdministrative is an operator-created booking; it may carry no
	// payment method and then stays valid until the reservation starts.
	KindAdministrative Kind = "ADMINISTRATIVE"
)

// ParseKind normalizes the booking kind, defaulting to STANDARD.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return KindStandard, nil
	case KindStandard:
		return KindStandard, nil
	case KindAdministrative:
		return KindAdministrative, nil
	}
	return "", apperrors.Newf(apperrors.KindValidation, "unknown booking kind %q", raw)
}

// Payment methods accepted at creation time. The payment itself is handled
// by an external processor; the method only drives the expiry policy.
const (
	PaymentOnline = "ONLINE"
	PaymentOnSite = "ONSITE"
	PaymentWallet = "WALLET"
)

// NormalizePaymentMethod validates and canonicalizes an optional payment
// method hint. nil means "not chosen yet".
func NormalizePaymentMethod(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	method := strings.ToUpper(strings.TrimSpace(*raw))
	switch method {
	case PaymentOnline, PaymentOnSite, PaymentWallet:
		return &method, nil
	}
	return nil, apperrors.Newf(apperrors.KindValidation, "unknown payment method %q", *raw)
}

// ExpiresAt computes the payment deadline for a new booking.
//
// On-site payment gives the holder until one hour before start. An
// administrative booking with no method chosen stays valid until the
// reservation begins. Everything else gets a short window from creation.
func ExpiresAt(kind Kind, paymentMethod *string, createdAt, start time.Time, pendingWindow, onSiteCutoff time.Duration) time.Time {
	if paymentMethod != nil && *paymentMethod == PaymentOnSite {
		return start.Add(-onSiteCutoff)
	}
	if kind == KindAdministrative && paymentMethod == nil {
		return start
	}
	return createdAt.Add(pendingWindow)
}
