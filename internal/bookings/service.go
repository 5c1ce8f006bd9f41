package bookings

import (
	"context"
	"time"

	"courtly/internal/notifications"
	"courtly/internal/pricing"
	"courtly/internal/resources"
	"courtly/internal/shared/apperrors"
	"courtly/internal/shared/config"
	"courtly/pkg/lock"
	"courtly/pkg/logger"

	"github.com/google/uuid"
)

// PricingQuoter is the slice of the pricing service the orchestrator
// needs. Satisfied by pricing.Service.
type PricingQuoter interface {
	Quote(ctx context.Context, userID *uuid.UUID, courtID uuid.UUID, start time.Time, durationMinutes int) (*pricing.PriceBreakdown, error)
}

// CourtSource resolves courts and their governing facility policy.
// Satisfied by resources.Service.
type CourtSource interface {
	GetCourt(ctx context.Context, id uuid.UUID) (*resources.Court, error)
	PolicyForCourt(ctx context.Context, courtID uuid.UUID) (*resources.FacilityPolicy, error)
}

// EventPublisher emits booking domain events. Satisfied by
// notifications.EventProducer.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event *notifications.BookingEvent) error
}

// CreateBookingInput is the resolved create request.
type CreateBookingInput struct {
	CourtID         uuid.UUID
	UserID          uuid.UUID
	StartTime       time.Time
	DurationMinutes int
	Kind            Kind
	PaymentMethod   *string
	Notes           string
	Recurrence      *Recurrence
}

// Service interface defines the contract for the booking orchestration
type Service interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateSeriesResult, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Booking, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]Booking, error)

	// CheckAvailability is the read-only probe exposed to clients. The
	// authoritative check always re-runs inside the create transaction.
	CheckAvailability(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error)

	// Payment / attendance transitions, driven by external collaborators.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentMethod string) (*Booking, error)
	CheckIn(ctx context.Context, id uuid.UUID) (*Booking, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*Booking, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*Booking, error)

	// CancelInternal transitions a loaded booking to CANCELLED and emits
	// the cancellation event. The cancellation workflow owns the policy
	// checks; this owns the transition.
	CancelInternal(ctx context.Context, booking *Booking, reason string) (*Booking, error)

	// ExpireStale is invoked by the background sweeper.
	ExpireStale(ctx context.Context) (int64, error)
}

type service struct {
	repo        Repository
	courts      CourtSource
	pricing     PricingQuoter
	coordinator *lock.Coordinator
	events      EventPublisher
	cfg         config.BookingConfig
	log         *logger.Logger
}

// NewService creates the booking orchestrator.
func NewService(repo Repository, courts CourtSource, quoter PricingQuoter, coordinator *lock.Coordinator, events EventPublisher, cfg config.BookingConfig, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		courts:      courts,
		pricing:     quoter,
		coordinator: coordinator,
		events:      events,
		cfg:         cfg,
		log:         log,
	}
}

func (s *service) CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateSeriesResult, error) {
	now := time.Now().UTC()
	start := in.StartTime.UTC()
	end := start.Add(time.Duration(in.DurationMinutes) * time.Minute)

	if in.DurationMinutes <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "duration must be positive")
	}
	if start.Before(now) {
		return nil, apperrors.New(apperrors.KindValidation, "booking must start in the future")
	}

	court, err := s.courts.GetCourt(ctx, in.CourtID)
	if err != nil {
		return nil, err
	}
	if !court.IsActive {
		return nil, apperrors.New(apperrors.KindNotFound, "court is not available for booking")
	}

	policy, err := s.courts.PolicyForCourt(ctx, in.CourtID)
	if err != nil {
		return nil, err
	}
	horizon := now.AddDate(0, 0, policy.MaxAdvanceDays)
	if start.After(horizon) {
		return nil, apperrors.Newf(apperrors.KindBookingWindowExceeded,
			"bookings may be made at most %d days in advance", policy.MaxAdvanceDays)
	}
	if err := checkOperatingHours(start, in.DurationMinutes, policy); err != nil {
		return nil, err
	}

	// Fast-path hint. Losing here means a sibling request in this process
	// is mid-flight on the same slot; the caller retries with backoff.
	holder := in.UserID.String()
	if !s.coordinator.Acquire(in.CourtID, start, end, holder) {
		return nil, apperrors.New(apperrors.KindLockTimeout,
			"slot is being booked by another request, retry shortly")
	}
	defer s.coordinator.Release(in.CourtID, start, end, holder)

	// Price is quoted here, outside the transaction. A rule change before
	// commit is accepted; callers needing strict consistency re-quote
	// right before payment.
	userID := in.UserID
	breakdown, err := s.pricing.Quote(ctx, &userID, in.CourtID, start, in.DurationMinutes)
	if err != nil {
		return nil, err
	}

	parent := &Booking{
		CourtID:       in.CourtID,
		UserID:        in.UserID,
		StartTime:     start,
		EndTime:       end,
		TotalPrice:    breakdown.Total,
		Status:        StatusPending,
		Kind:          in.Kind,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}
	expiry := ExpiresAt(in.Kind, in.PaymentMethod, now, start, s.cfg.PendingPaymentWindow, s.cfg.OnSiteCutoff)
	parent.ExpiresAt = &expiry

	var occurrences []*Booking
	if in.Recurrence != nil {
		parent.IsRecurring = true
		starts := ExpandOccurrences(start, *in.Recurrence, horizon)
		duration := end.Sub(start)
		for _, occStart := range starts {
			occEnd := occStart.Add(duration)
			occExpiry := ExpiresAt(in.Kind, in.PaymentMethod, now, occStart, s.cfg.PendingPaymentWindow, s.cfg.OnSiteCutoff)
			occurrences = append(occurrences, &Booking{
				CourtID:       in.CourtID,
				UserID:        in.UserID,
				StartTime:     occStart,
				EndTime:       occEnd,
				TotalPrice:    breakdown.Total,
				Status:        StatusPending,
				Kind:          in.Kind,
				PaymentMethod: in.PaymentMethod,
				ExpiresAt:     &occExpiry,
				Notes:         in.Notes,
			})
		}
	}

	result, err := s.repo.CreateBookingSeries(ctx, parent, occurrences)
	if err != nil {
		if apperrors.Is(err, apperrors.KindSlotUnavailable) {
			s.log.LogSlotConflict(ctx, in.CourtID.String(), in.UserID.String(), start, end)
		}
		return nil, err
	}

	for _, skipped := range result.Skipped {
		s.log.Warn("recurrence occurrence skipped",
			"parent_id", result.Parent.ID.String(),
			"start", skipped.StartTime,
			"reason", skipped.Reason,
		)
	}

	s.emitEvent(notifications.EventBookingPending, result.Parent, "")
	return result, nil
}

// checkOperatingHours validates the slot against the facility's open and
// close minutes. Slots never span midnight.
func checkOperatingHours(start time.Time, durationMinutes int, policy *resources.FacilityPolicy) error {
	startMinute := start.Hour()*60 + start.Minute()
	endMinute := startMinute + durationMinutes
	if startMinute < policy.OpenMinute || endMinute > policy.CloseMinute {
		return apperrors.Newf(apperrors.KindValidation,
			"booking must fall within operating hours (%02d:%02d to %02d:%02d)",
			policy.OpenMinute/60, policy.OpenMinute%60,
			policy.CloseMinute/60, policy.CloseMinute%60)
	}
	return nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Booking, error) {
	return s.repo.GetUserBookings(ctx, userID, from, to)
}

func (s *service) ListChildren(ctx context.Context, parentID uuid.UUID) ([]Booking, error) {
	return s.repo.ListChildren(ctx, parentID)
}

func (s *service) CheckAvailability(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, apperrors.New(apperrors.KindValidation, "end must be after start")
	}
	conflict, err := s.repo.HasSlotConflict(ctx, courtID, start, end)
	if err != nil {
		return false, err
	}
	if conflict {
		return false, nil
	}
	// The probe must agree with the create path, which also rejects
	// slots inside maintenance windows.
	maintenance, err := s.repo.HasMaintenanceOverlap(ctx, courtID, start, end)
	if err != nil {
		return false, err
	}
	return !maintenance, nil
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID, paymentMethod string) (*Booking, error) {
	method := paymentMethod
	normalized, err := NormalizePaymentMethod(&method)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(StatusPaid) {
		return nil, apperrors.Newf(apperrors.KindValidation, "cannot mark a %s booking paid", booking.Status)
	}
	if booking.ExpiresAt != nil && !booking.ExpiresAt.After(time.Now().UTC()) {
		return nil, apperrors.New(apperrors.KindValidation, "payment window has expired")
	}

	if err := s.repo.MarkPaidGuarded(ctx, id, booking.Status, normalized); err != nil {
		return nil, err
	}
	booking.Status = StatusPaid
	if normalized != nil {
		booking.PaymentMethod = normalized
	}
	return booking, nil
}

func (s *service) CheckIn(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusInProgress)
}

func (s *service) CheckOut(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusNoShow)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to Status) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(to) {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"cannot move a %s booking to %s", booking.Status, to)
	}
	if err := s.repo.UpdateStatusGuarded(ctx, id, booking.Status, to, nil); err != nil {
		return nil, err
	}
	booking.Status = to
	return booking, nil
}

func (s *service) CancelInternal(ctx context.Context, booking *Booking, reason string) (*Booking, error) {
	if !booking.Status.CanTransitionTo(StatusCancelled) {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"cannot cancel a %s booking", booking.Status)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatusGuarded(ctx, booking.ID, booking.Status, StatusCancelled, &now); err != nil {
		return nil, err
	}
	booking.Status = StatusCancelled
	booking.CancelledAt = &now

	s.emitEvent(notifications.EventBookingCancelled, booking, reason)
	return booking, nil
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStalePending(ctx, time.Now().UTC())
}

// emitEvent publishes best-effort, after commit. A delivery failure is
// logged and never propagated.
func (s *service) emitEvent(eventType string, b *Booking, reason string) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := notifications.NewBookingEvent(eventType, b.ID, b.CourtID, b.UserID, b.StartTime, b.EndTime, string(b.Status), reason)
	if err := s.events.PublishBookingEvent(ctx, event); err != nil {
		s.log.Error("failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID.String(),
			"error", err.Error(),
		)
	}
}
