package cancellation

import (
	"context"
	"time"

	"courtly/internal/bookings"
	"courtly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingGateway is the slice of the booking service the workflow needs.
// Satisfied by bookings.Service.
type BookingGateway interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	CancelInternal(ctx context.Context, booking *bookings.Booking, reason string) (*bookings.Booking, error)
}

// CancelResult is returned to the caller so downstream refund handling
// can be rendered immediately.
type CancelResult struct {
	Booking      *bookings.Booking `json:"booking"`
	Fee          decimal.Decimal   `json:"fee"`
	RefundAmount decimal.Decimal   `json:"refund_amount"`
	RefundDueBy  *time.Time        `json:"refund_due_by,omitempty"`
}

// Service interface defines the contract for the cancellation workflow
type Service interface {
	// Cancel transitions a booking to CANCELLED, applying the court's
	// cancellation policy. asStaff bypasses ownership and policy gates.
	Cancel(ctx context.Context, bookingID, requesterID uuid.UUID, asStaff bool, reason string) (*CancelResult, error)

	GetCancellation(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error)
	SetPolicy(ctx context.Context, policy *CancellationPolicy) error
}

type service struct {
	repo     Repository
	bookings BookingGateway
}

// NewService creates the cancellation workflow.
func NewService(repo Repository, gateway BookingGateway) Service {
	return &service{repo: repo, bookings: gateway}
}

func (s *service) Cancel(ctx context.Context, bookingID, requesterID uuid.UUID, asStaff bool, reason string) (*CancelResult, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Idempotent failure: re-cancelling reports an error so the caller
	// knows nothing changed.
	if booking.Status == bookings.StatusCancelled {
		return nil, apperrors.New(apperrors.KindValidation, "booking is already cancelled")
	}
	if booking.Status == bookings.StatusCompleted {
		return nil, apperrors.New(apperrors.KindValidation, "completed bookings cannot be cancelled")
	}
	if !asStaff && booking.UserID != requesterID {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}

	policy := s.policyFor(ctx, booking.CourtID)
	if !policy.AllowCancellation && !asStaff {
		return nil, apperrors.New(apperrors.KindValidation, "this court does not allow cancellations")
	}

	fee := computeFee(booking, policy, time.Now().UTC())
	refund := computeRefund(booking, fee)

	cancelled, err := s.bookings.CancelInternal(ctx, booking, reason)
	if err != nil {
		return nil, err
	}

	record := &Cancellation{
		BookingID:    cancelled.ID,
		UserID:       cancelled.UserID,
		Reason:       reason,
		Fee:          fee,
		RefundAmount: refund,
	}
	if refund.IsPositive() {
		due := time.Now().UTC().AddDate(0, 0, policy.RefundProcessingDays)
		record.RefundDueBy = &due
	}
	if err := s.repo.CreateCancellation(ctx, record); err != nil {
		return nil, err
	}

	return &CancelResult{
		Booking:      cancelled,
		Fee:          fee,
		RefundAmount: refund,
		RefundDueBy:  record.RefundDueBy,
	}, nil
}

// policyFor resolves the court's policy, defaulting to free cancellation.
func (s *service) policyFor(ctx context.Context, courtID uuid.UUID) *CancellationPolicy {
	policy, err := s.repo.GetPolicyByCourtID(ctx, courtID)
	if err != nil {
		return &CancellationPolicy{
			CourtID:              courtID,
			AllowCancellation:    true,
			FeeType:              FeeNone,
			RefundProcessingDays: 5,
		}
	}
	return policy
}

// computeFee applies the policy fee when the cancellation falls inside
// the cutoff window. Unpaid bookings are never charged.
func computeFee(b *bookings.Booking, policy *CancellationPolicy, now time.Time) decimal.Decimal {
	if b.Status == bookings.StatusPending {
		return decimal.Zero
	}
	if policy.CutoffHours <= 0 {
		return decimal.Zero
	}
	cutoff := b.StartTime.Add(-time.Duration(policy.CutoffHours) * time.Hour)
	if now.Before(cutoff) {
		return decimal.Zero
	}

	switch policy.FeeType {
	case FeeFixed:
		if policy.FeeAmount.GreaterThan(b.TotalPrice) {
			return b.TotalPrice
		}
		return policy.FeeAmount
	case FeePercentage:
		return b.TotalPrice.Mul(policy.FeeAmount)
	}
	return decimal.Zero
}

// computeRefund is price minus fee for paid bookings, zero otherwise.
func computeRefund(b *bookings.Booking, fee decimal.Decimal) decimal.Decimal {
	if b.Status != bookings.StatusPaid && b.Status != bookings.StatusInProgress {
		return decimal.Zero
	}
	refund := b.TotalPrice.Sub(fee)
	if refund.IsNegative() {
		return decimal.Zero
	}
	return refund
}

func (s *service) GetCancellation(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error) {
	return s.repo.GetCancellationByBookingID(ctx, bookingID)
}

func (s *service) SetPolicy(ctx context.Context, policy *CancellationPolicy) error {
	switch policy.FeeType {
	case FeeNone, FeeFixed, FeePercentage:
	default:
		return apperrors.Newf(apperrors.KindValidation, "unknown fee type %q", policy.FeeType)
	}
	if policy.FeeAmount.IsNegative() {
		return apperrors.New(apperrors.KindValidation, "fee amount must not be negative")
	}
	if policy.FeeType == FeePercentage && policy.FeeAmount.GreaterThan(decimal.NewFromInt(1)) {
		return apperrors.New(apperrors.KindValidation, "percentage fee must be a fraction between 0 and 1")
	}
	if policy.CutoffHours < 0 {
		return apperrors.New(apperrors.KindValidation, "cutoff hours must not be negative")
	}
	return s.repo.UpsertPolicy(ctx, policy)
}
