package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"courtly/internal/notifications"
	"courtly/internal/pricing"
	"courtly/internal/resources"
	"courtly/internal/shared/apperrors"
	"courtly/internal/shared/config"
	"courtly/pkg/lock"
	"courtly/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeRepo is an in-memory Repository that enforces the availability
// rules the way the transactional checks do: slot overlap, maintenance
// windows, and the per-requester day rule.
type fakeRepo struct {
	mu          sync.Mutex
	bookings    map[uuid.UUID]*Booking
	maintenance []resources.MaintenanceWindow
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *fakeRepo) addMaintenance(courtID uuid.UUID, start, end time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maintenance = append(r.maintenance, resources.MaintenanceWindow{
		ID:        uuid.New(),
		CourtID:   courtID,
		StartTime: start,
		EndTime:   end,
		Status:    resources.MaintenanceScheduled,
	})
}

func (r *fakeRepo) conflictLocked(courtID uuid.UUID, start, end, now time.Time) bool {
	for _, b := range r.bookings {
		if b.CourtID == courtID && b.Blocks(now) && IntervalsOverlap(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) maintenanceLocked(courtID uuid.UUID, start, end time.Time) bool {
	for _, w := range r.maintenance {
		if w.CourtID == courtID && IntervalsOverlap(start, end, w.StartTime, w.EndTime) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) userConflictLocked(userID uuid.UUID, start, end, now time.Time) bool {
	dayStart, dayEnd := DayBounds(start, time.UTC)
	for _, b := range r.bookings {
		if b.UserID != userID || !b.Blocks(now) {
			continue
		}
		if !b.StartTime.Before(dayStart) && b.StartTime.Before(dayEnd) &&
			IntervalsOverlap(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) checkLocked(b *Booking, now time.Time) error {
	if r.conflictLocked(b.CourtID, b.StartTime, b.EndTime, now) {
		return apperrors.New(apperrors.KindSlotUnavailable, "slot was taken by a concurrent booking")
	}
	if r.maintenanceLocked(b.CourtID, b.StartTime, b.EndTime) {
		return apperrors.New(apperrors.KindMaintenanceWindow, "court is closed for maintenance during the requested time")
	}
	if r.userConflictLocked(b.UserID, b.StartTime, b.EndTime, now) {
		return apperrors.New(apperrors.KindUserConflict, "you already have a booking during the requested time")
	}
	return nil
}

func (r *fakeRepo) CreateBookingSeries(ctx context.Context, parent *Booking, occurrences []*Booking) (*CreateSeriesResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()

	if err := r.checkLocked(parent, now); err != nil {
		return nil, err
	}
	parent.ID = uuid.New()
	parent.Status = StatusPending
	r.bookings[parent.ID] = parent

	result := &CreateSeriesResult{Parent: parent}
	for _, occ := range occurrences {
		if err := r.checkLocked(occ, now); err != nil {
			result.Skipped = append(result.Skipped, SkippedOccurrence{
				StartTime: occ.StartTime,
				EndTime:   occ.EndTime,
				Reason:    err.Error(),
			})
			continue
		}
		occ.ID = uuid.New()
		occ.RecurringParentID = &parent.ID
		occ.IsRecurring = true
		r.bookings[occ.ID] = occ
		result.Children = append(result.Children, occ)
	}
	return result, nil
}

func (r *fakeRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.UserID == userID && IntervalsOverlap(from, to, b.StartTime, b.EndTime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.RecurringParentID != nil && *b.RecurringParentID == parentID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to Status, cancelledAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return apperrors.Newf(apperrors.KindValidation, "booking is no longer %s", from)
	}
	b.Status = to
	if cancelledAt != nil {
		b.CancelledAt = cancelledAt
	}
	return nil
}

func (r *fakeRepo) MarkPaidGuarded(ctx context.Context, id uuid.UUID, from Status, paymentMethod *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return apperrors.Newf(apperrors.KindValidation, "booking is no longer %s", from)
	}
	b.Status = StatusPaid
	if paymentMethod != nil {
		m := *paymentMethod
		b.PaymentMethod = &m
	}
	return nil
}

func (r *fakeRepo) HasSlotConflict(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conflictLocked(courtID, start, end, time.Now().UTC()), nil
}

func (r *fakeRepo) HasMaintenanceOverlap(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maintenanceLocked(courtID, start, end), nil
}

func (r *fakeRepo) ExpireStalePending(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusPending && b.ExpiresAt != nil && !b.ExpiresAt.After(now) {
			b.Status = StatusCancelled
			at := now
			b.CancelledAt = &at
			n++
		}
	}
	return n, nil
}

type fakeCourts struct {
	courts map[uuid.UUID]*resources.Court
	policy *resources.FacilityPolicy
}

func (f *fakeCourts) addCourt(court *resources.Court) {
	f.courts[court.ID] = court
}

func (f *fakeCourts) GetCourt(ctx context.Context, id uuid.UUID) (*resources.Court, error) {
	court, ok := f.courts[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "court not found")
	}
	return court, nil
}

func (f *fakeCourts) PolicyForCourt(ctx context.Context, courtID uuid.UUID) (*resources.FacilityPolicy, error) {
	return f.policy, nil
}

type fakeQuoter struct {
	total decimal.Decimal
}

func (f *fakeQuoter) Quote(ctx context.Context, userID *uuid.UUID, courtID uuid.UUID, start time.Time, durationMinutes int) (*pricing.PriceBreakdown, error) {
	return &pricing.PriceBreakdown{Total: f.total}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*notifications.BookingEvent
}

func (f *fakePublisher) PublishBookingEvent(ctx context.Context, event *notifications.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) byType(eventType string) []*notifications.BookingEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notifications.BookingEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	service     Service
	repo        *fakeRepo
	courts      *fakeCourts
	publisher   *fakePublisher
	coordinator *lock.Coordinator
	courtID     uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	courtID := uuid.New()
	courts := &fakeCourts{
		courts: make(map[uuid.UUID]*resources.Court),
		policy: &resources.FacilityPolicy{
			OpenMinute:     6 * 60,
			CloseMinute:    23 * 60,
			MaxAdvanceDays: 30,
		},
	}
	courts.addCourt(&resources.Court{
		ID:               courtID,
		FacilityID:       uuid.New(),
		Name:             "Court A",
		BasePricePerHour: decimal.NewFromInt(20),
		IsActive:         true,
	})
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	coordinator := lock.NewCoordinator(0, 0)
	cfg := config.BookingConfig{
		PendingPaymentWindow: 15 * time.Minute,
		OnSiteCutoff:         time.Hour,
		TransactionTimeout:   15 * time.Second,
	}
	svc := NewService(repo, courts, &fakeQuoter{total: decimal.RequireFromString("40.5")}, coordinator, publisher, cfg, logger.New())
	return &harness{
		service:     svc,
		repo:        repo,
		courts:      courts,
		publisher:   publisher,
		coordinator: coordinator,
		courtID:     courtID,
	}
}

// tomorrowAt returns tomorrow at the given UTC hour, safely inside
// operating hours and the advance window.
func tomorrowAt(hour int) time.Time {
	now := time.Now().UTC()
	d := now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func TestCreateBookingSuccess(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID:         h.courtID,
		UserID:          uuid.New(),
		StartTime:       start,
		DurationMinutes: 60,
		Kind:            KindStandard,
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	b := result.Parent
	if b.Status != StatusPending {
		t.Fatalf("status = %s, want PENDING", b.Status)
	}
	if b.TotalPrice.String() != "40.5" {
		t.Fatalf("total price = %s", b.TotalPrice)
	}
	if b.ExpiresAt == nil {
		t.Fatal("expires_at not set")
	}
	wantExpiry := time.Now().UTC().Add(15 * time.Minute)
	if diff := b.ExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expires_at = %v, want about %v", b.ExpiresAt, wantExpiry)
	}

	if events := h.publisher.byType(notifications.EventBookingPending); len(events) != 1 {
		t.Fatalf("pending events = %d, want 1", len(events))
	}
	// The fast-path hint must be released after success.
	if h.coordinator.IsLocked(h.courtID, start, start.Add(time.Hour)) {
		t.Fatal("coordinator entry not released")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	h := newHarness(t)
	user := uuid.New()

	tests := []struct {
		name  string
		in    CreateBookingInput
		kind  apperrors.Kind
	}{
		{
			name: "start in the past",
			in: CreateBookingInput{
				CourtID: h.courtID, UserID: user,
				StartTime: time.Now().UTC().Add(-time.Hour), DurationMinutes: 60,
			},
			kind: apperrors.KindValidation,
		},
		{
			name: "zero duration",
			in: CreateBookingInput{
				CourtID: h.courtID, UserID: user,
				StartTime: tomorrowAt(10), DurationMinutes: 0,
			},
			kind: apperrors.KindValidation,
		},
		{
			name: "beyond the advance window",
			in: CreateBookingInput{
				CourtID: h.courtID, UserID: user,
				StartTime: time.Now().UTC().AddDate(0, 0, 45), DurationMinutes: 60,
			},
			kind: apperrors.KindBookingWindowExceeded,
		},
		{
			name: "outside operating hours",
			in: CreateBookingInput{
				CourtID: h.courtID, UserID: user,
				StartTime: tomorrowAt(5), DurationMinutes: 60,
			},
			kind: apperrors.KindValidation,
		},
		{
			name: "unknown court",
			in: CreateBookingInput{
				CourtID: uuid.New(), UserID: user,
				StartTime: tomorrowAt(10), DurationMinutes: 60,
			},
			kind: apperrors.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.service.CreateBooking(context.Background(), tt.in)
			if !apperrors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestCreateBookingCoordinatorContention(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)
	end := start.Add(time.Hour)

	// Another in-process request already holds the slot hint.
	if !h.coordinator.Acquire(h.courtID, start, end, "other-holder") {
		t.Fatal("setup acquire failed")
	}

	_, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if !apperrors.Is(err, apperrors.KindLockTimeout) {
		t.Fatalf("error = %v, want lock timeout", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Fatal("lock timeout must be retryable")
	}
}

func TestCreateBookingSlotConflict(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)
	user := uuid.New()

	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: user,
		StartTime: start, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start.Add(30 * time.Minute), DurationMinutes: 60,
	})
	if !apperrors.Is(err, apperrors.KindSlotUnavailable) {
		t.Fatalf("error = %v, want slot unavailable", err)
	}
	if apperrors.IsRetryable(err) {
		t.Fatal("slot conflicts are permanent, not retryable")
	}
}

func TestCreateBookingNoFalseConflicts(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	// Back-to-back slots share an endpoint and must both succeed.
	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("first slot failed: %v", err)
	}
	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start.Add(time.Hour), DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("adjacent slot failed: %v", err)
	}
}

func TestCreateBookingExclusiveSuccessUnderContention(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
				CourtID: h.courtID, UserID: uuid.New(),
				StartTime: start, DurationMinutes: 60,
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if !apperrors.Is(err, apperrors.KindSlotUnavailable) && !apperrors.Is(err, apperrors.KindLockTimeout) {
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("%d bookings succeeded, want exactly 1", successes)
	}
}

func TestCreateBookingRecurrencePartialFailure(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	// Occupy what will be occurrence #2 of the series.
	blockedStart := start.AddDate(0, 0, 14)
	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: blockedStart, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
		Recurrence: &Recurrence{
			Frequency: FrequencyWeekly,
			EndDate:   start.AddDate(0, 0, 28),
		},
	})
	if err != nil {
		t.Fatalf("recurring create failed: %v", err)
	}

	if result.Parent == nil || result.Parent.Status != StatusPending {
		t.Fatal("parent booking was not created")
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(result.Skipped))
	}
	if !result.Skipped[0].StartTime.Equal(blockedStart) {
		t.Fatalf("skipped occurrence at %v, want %v", result.Skipped[0].StartTime, blockedStart)
	}
	if len(result.Children) != 3 {
		t.Fatalf("children = %d, want 3 (4 candidates, 1 blocked)", len(result.Children))
	}
	for _, child := range result.Children {
		if child.RecurringParentID == nil || *child.RecurringParentID != result.Parent.ID {
			t.Fatal("child does not reference the parent")
		}
	}
}

func TestCancelInternalIdempotentFailure(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}

	booking, err := h.service.GetBooking(context.Background(), result.Parent.ID)
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}

	cancelled, err := h.service.CancelInternal(context.Background(), booking, "user request")
	if err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if cancelled.Status != StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancel did not transition: %+v", cancelled)
	}

	// Cancelling again must fail loudly and change nothing.
	if _, err := h.service.CancelInternal(context.Background(), cancelled, "again"); err == nil {
		t.Fatal("second cancel should fail")
	}

	stored, _ := h.service.GetBooking(context.Background(), result.Parent.ID)
	if stored.Status != StatusCancelled {
		t.Fatalf("status after failed re-cancel = %s", stored.Status)
	}
	if events := h.publisher.byType(notifications.EventBookingCancelled); len(events) != 1 {
		t.Fatalf("cancelled events = %d, want 1", len(events))
	}
}

func TestMarkPaidRejectsExpired(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}

	// Force the payment deadline into the past.
	h.repo.mu.Lock()
	expired := time.Now().UTC().Add(-time.Minute)
	h.repo.bookings[result.Parent.ID].ExpiresAt = &expired
	h.repo.mu.Unlock()

	if _, err := h.service.MarkPaid(context.Background(), result.Parent.ID, PaymentOnline); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestTransitionChain(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}
	id := result.Parent.ID

	if _, err := h.service.MarkPaid(context.Background(), id, PaymentOnline); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if _, err := h.service.CheckIn(context.Background(), id); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if _, err := h.service.CheckOut(context.Background(), id); err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}

	// COMPLETED is terminal; nothing moves it.
	if _, err := h.service.CheckIn(context.Background(), id); err == nil {
		t.Fatal("transition out of COMPLETED should fail")
	}
}

func TestExpireStale(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}

	h.repo.mu.Lock()
	expired := time.Now().UTC().Add(-time.Minute)
	h.repo.bookings[result.Parent.ID].ExpiresAt = &expired
	h.repo.mu.Unlock()

	n, err := h.service.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("ExpireStale failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d bookings, want 1", n)
	}

	// The slot opens back up once the stale hold is gone.
	available, err := h.service.CheckAvailability(context.Background(), h.courtID, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if !available {
		t.Fatal("slot still blocked after expiry")
	}
}

func TestCreateBookingMaintenanceWindow(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	h.repo.addMaintenance(h.courtID, start.Add(-time.Hour), start.Add(30*time.Minute))

	_, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if !apperrors.Is(err, apperrors.KindMaintenanceWindow) {
		t.Fatalf("error = %v, want maintenance window", err)
	}
	if apperrors.Is(err, apperrors.KindSlotUnavailable) {
		t.Fatal("maintenance must not be reported as a slot conflict")
	}
	if apperrors.IsRetryable(err) {
		t.Fatal("maintenance closures are not retryable")
	}

	// The same slot after the window is fine.
	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start.Add(time.Hour), DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("slot clear of the window failed: %v", err)
	}
}

func TestCreateBookingRequesterConflict(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)
	user := uuid.New()

	otherCourtID := uuid.New()
	h.courts.addCourt(&resources.Court{
		ID:               otherCourtID,
		FacilityID:       uuid.New(),
		Name:             "Court B",
		BasePricePerHour: decimal.NewFromInt(24),
		IsActive:         true,
	})

	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: user,
		StartTime: start, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// The same user overlapping themselves on a different court.
	_, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: otherCourtID, UserID: user,
		StartTime: start.Add(30 * time.Minute), DurationMinutes: 60,
	})
	if !apperrors.Is(err, apperrors.KindUserConflict) {
		t.Fatalf("error = %v, want user conflict", err)
	}
	if apperrors.IsRetryable(err) {
		t.Fatal("user conflicts are not retryable")
	}

	// A different user takes the same interval on the other court.
	if _, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: otherCourtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("other user's booking failed: %v", err)
	}
}

func TestCheckAvailabilityMaintenance(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)
	end := start.Add(time.Hour)

	h.repo.addMaintenance(h.courtID, start.Add(-time.Hour), start.Add(30*time.Minute))

	// The probe must agree with the create path's verdict.
	available, err := h.service.CheckAvailability(context.Background(), h.courtID, start, end)
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if available {
		t.Fatal("probe reported a slot inside a maintenance window as available")
	}

	available, err = h.service.CheckAvailability(context.Background(), h.courtID, start.Add(time.Hour), end.Add(time.Hour))
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if !available {
		t.Fatal("slot clear of the window reported unavailable")
	}
}

func TestMarkPaidPersistsPaymentMethod(t *testing.T) {
	h := newHarness(t)
	start := tomorrowAt(10)

	result, err := h.service.CreateBooking(context.Background(), CreateBookingInput{
		CourtID: h.courtID, UserID: uuid.New(),
		StartTime: start, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("setup booking failed: %v", err)
	}

	paid, err := h.service.MarkPaid(context.Background(), result.Parent.ID, "online")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if paid.PaymentMethod == nil || *paid.PaymentMethod != PaymentOnline {
		t.Fatalf("returned payment method = %v, want %s", paid.PaymentMethod, PaymentOnline)
	}

	// The method must survive a reload, not just the returned copy.
	stored, err := h.service.GetBooking(context.Background(), result.Parent.ID)
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if stored.Status != StatusPaid {
		t.Fatalf("stored status = %s, want PAID", stored.Status)
	}
	if stored.PaymentMethod == nil || *stored.PaymentMethod != PaymentOnline {
		t.Fatalf("stored payment method = %v, want %s", stored.PaymentMethod, PaymentOnline)
	}
}
