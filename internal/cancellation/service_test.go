package cancellation

import (
	"context"
	"testing"
	"time"

	"courtly/internal/bookings"
	"courtly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeGateway struct {
	bookings map[uuid.UUID]*bookings.Booking
	cancels  int
}

func newFakeGateway(bs ...*bookings.Booking) *fakeGateway {
	g := &fakeGateway{bookings: make(map[uuid.UUID]*bookings.Booking)}
	for _, b := range bs {
		g.bookings[b.ID] = b
	}
	return g
}

func (g *fakeGateway) GetBooking(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	b, ok := g.bookings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}
	clone := *b
	return &clone, nil
}

func (g *fakeGateway) CancelInternal(ctx context.Context, b *bookings.Booking, reason string) (*bookings.Booking, error) {
	stored, ok := g.bookings[b.ID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}
	if !stored.Status.CanTransitionTo(bookings.StatusCancelled) {
		return nil, apperrors.Newf(apperrors.KindValidation, "cannot cancel a %s booking", stored.Status)
	}
	now := time.Now().UTC()
	stored.Status = bookings.StatusCancelled
	stored.CancelledAt = &now
	g.cancels++
	clone := *stored
	return &clone, nil
}

type fakeRepo struct {
	policies map[uuid.UUID]*CancellationPolicy
	records  map[uuid.UUID]*Cancellation
}

func newFakeRepoStore() *fakeRepo {
	return &fakeRepo{
		policies: make(map[uuid.UUID]*CancellationPolicy),
		records:  make(map[uuid.UUID]*Cancellation),
	}
}

func (r *fakeRepo) GetPolicyByCourtID(ctx context.Context, courtID uuid.UUID) (*CancellationPolicy, error) {
	p, ok := r.policies[courtID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "cancellation policy not found")
	}
	return p, nil
}

func (r *fakeRepo) UpsertPolicy(ctx context.Context, policy *CancellationPolicy) error {
	r.policies[policy.CourtID] = policy
	return nil
}

func (r *fakeRepo) CreateCancellation(ctx context.Context, record *Cancellation) error {
	record.ID = uuid.New()
	r.records[record.BookingID] = record
	return nil
}

func (r *fakeRepo) GetCancellationByBookingID(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error) {
	rec, ok := r.records[bookingID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "cancellation not found")
	}
	return rec, nil
}

func paidBooking(userID uuid.UUID, start time.Time, price string) *bookings.Booking {
	return &bookings.Booking{
		ID:         uuid.New(),
		CourtID:    uuid.New(),
		UserID:     userID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		TotalPrice: decimal.RequireFromString(price),
		Status:     bookings.StatusPaid,
	}
}

func TestCancelPaidBookingFullRefund(t *testing.T) {
	user := uuid.New()
	booking := paidBooking(user, time.Now().UTC().Add(72*time.Hour), "40.50")
	gateway := newFakeGateway(booking)
	repo := newFakeRepoStore()
	svc := NewService(repo, gateway)

	result, err := svc.Cancel(context.Background(), booking.ID, user, false, "change of plans")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if result.Booking.Status != bookings.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", result.Booking.Status)
	}
	if !result.Fee.IsZero() {
		t.Fatalf("fee = %s, want 0 without a policy", result.Fee)
	}
	if !result.RefundAmount.Equal(decimal.RequireFromString("40.50")) {
		t.Fatalf("refund = %s, want 40.50", result.RefundAmount)
	}
	if result.RefundDueBy == nil {
		t.Fatal("refund due date not set")
	}

	record, err := svc.GetCancellation(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetCancellation failed: %v", err)
	}
	if record.Reason != "change of plans" {
		t.Fatalf("recorded reason = %q", record.Reason)
	}
}

func TestCancelAlreadyCancelledFails(t *testing.T) {
	user := uuid.New()
	booking := paidBooking(user, time.Now().UTC().Add(72*time.Hour), "30")
	booking.Status = bookings.StatusCancelled
	gateway := newFakeGateway(booking)
	svc := NewService(newFakeRepoStore(), gateway)

	_, err := svc.Cancel(context.Background(), booking.ID, user, false, "")
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
	// Nothing changed and no new cancel reached the booking engine.
	if gateway.cancels != 0 {
		t.Fatal("re-cancel must not call the booking engine")
	}
	if gateway.bookings[booking.ID].Status != bookings.StatusCancelled {
		t.Fatal("status changed on failed re-cancel")
	}
}

func TestCancelCompletedFails(t *testing.T) {
	user := uuid.New()
	booking := paidBooking(user, time.Now().UTC().Add(-72*time.Hour), "30")
	booking.Status = bookings.StatusCompleted
	svc := NewService(newFakeRepoStore(), newFakeGateway(booking))

	if _, err := svc.Cancel(context.Background(), booking.ID, user, false, ""); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestCancelOwnershipEnforced(t *testing.T) {
	owner := uuid.New()
	booking := paidBooking(owner, time.Now().UTC().Add(72*time.Hour), "30")
	gateway := newFakeGateway(booking)
	svc := NewService(newFakeRepoStore(), gateway)

	// A stranger cannot cancel it and learns nothing about it.
	if _, err := svc.Cancel(context.Background(), booking.ID, uuid.New(), false, ""); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}

	// Staff can.
	if _, err := svc.Cancel(context.Background(), booking.ID, uuid.New(), true, "operator action"); err != nil {
		t.Fatalf("staff cancel failed: %v", err)
	}
}

func TestCancelFeeInsideCutoff(t *testing.T) {
	user := uuid.New()
	// Starts in 2 hours; the 24h cutoff has passed.
	booking := paidBooking(user, time.Now().UTC().Add(2*time.Hour), "100")
	repo := newFakeRepoStore()
	repo.policies[booking.CourtID] = &CancellationPolicy{
		CourtID:              booking.CourtID,
		AllowCancellation:    true,
		CutoffHours:          24,
		FeeType:              FeePercentage,
		FeeAmount:            decimal.RequireFromString("0.25"),
		RefundProcessingDays: 5,
	}
	svc := NewService(repo, newFakeGateway(booking))

	result, err := svc.Cancel(context.Background(), booking.ID, user, false, "late cancel")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !result.Fee.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("fee = %s, want 25", result.Fee)
	}
	if !result.RefundAmount.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("refund = %s, want 75", result.RefundAmount)
	}
}

func TestCancelNoFeeOutsideCutoff(t *testing.T) {
	user := uuid.New()
	// Starts in 3 days; well outside the 24h cutoff.
	booking := paidBooking(user, time.Now().UTC().Add(72*time.Hour), "100")
	repo := newFakeRepoStore()
	repo.policies[booking.CourtID] = &CancellationPolicy{
		CourtID:           booking.CourtID,
		AllowCancellation: true,
		CutoffHours:       24,
		FeeType:           FeeFixed,
		FeeAmount:         decimal.RequireFromString("10"),
	}
	svc := NewService(repo, newFakeGateway(booking))

	result, err := svc.Cancel(context.Background(), booking.ID, user, false, "")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !result.Fee.IsZero() {
		t.Fatalf("fee = %s, want 0 outside the cutoff", result.Fee)
	}
	if !result.RefundAmount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("refund = %s, want 100", result.RefundAmount)
	}
}

func TestCancelPendingNoRefundNoFee(t *testing.T) {
	user := uuid.New()
	booking := paidBooking(user, time.Now().UTC().Add(time.Hour), "50")
	booking.Status = bookings.StatusPending
	repo := newFakeRepoStore()
	repo.policies[booking.CourtID] = &CancellationPolicy{
		CourtID:           booking.CourtID,
		AllowCancellation: true,
		FeeType:           FeeFixed,
		FeeAmount:         decimal.RequireFromString("10"),
	}
	svc := NewService(repo, newFakeGateway(booking))

	result, err := svc.Cancel(context.Background(), booking.ID, user, false, "")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !result.Fee.IsZero() || !result.RefundAmount.IsZero() {
		t.Fatalf("unpaid booking fee/refund = %s/%s, want 0/0", result.Fee, result.RefundAmount)
	}
	if result.RefundDueBy != nil {
		t.Fatal("no refund due date expected without a refund")
	}
}

func TestCancelDisallowedByPolicy(t *testing.T) {
	user := uuid.New()
	booking := paidBooking(user, time.Now().UTC().Add(72*time.Hour), "30")
	repo := newFakeRepoStore()
	repo.policies[booking.CourtID] = &CancellationPolicy{
		CourtID:           booking.CourtID,
		AllowCancellation: false,
		FeeType:           FeeNone,
	}
	gateway := newFakeGateway(booking)
	svc := NewService(repo, gateway)

	if _, err := svc.Cancel(context.Background(), booking.ID, user, false, ""); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}

	// Staff override still works.
	if _, err := svc.Cancel(context.Background(), booking.ID, uuid.New(), true, "forced"); err != nil {
		t.Fatalf("staff override failed: %v", err)
	}
}

func TestSetPolicyValidation(t *testing.T) {
	svc := NewService(newFakeRepoStore(), newFakeGateway())

	bad := []*CancellationPolicy{
		{CourtID: uuid.New(), FeeType: "HALF"},
		{CourtID: uuid.New(), FeeType: FeeFixed, FeeAmount: decimal.RequireFromString("-5")},
		{CourtID: uuid.New(), FeeType: FeePercentage, FeeAmount: decimal.RequireFromString("1.5")},
		{CourtID: uuid.New(), FeeType: FeeNone, CutoffHours: -1},
	}
	for i, p := range bad {
		if err := svc.SetPolicy(context.Background(), p); !apperrors.Is(err, apperrors.KindValidation) {
			t.Fatalf("policy %d: error = %v, want validation error", i, err)
		}
	}

	good := &CancellationPolicy{
		CourtID:   uuid.New(),
		FeeType:   FeePercentage,
		FeeAmount: decimal.RequireFromString("0.5"),
	}
	if err := svc.SetPolicy(context.Background(), good); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
}
