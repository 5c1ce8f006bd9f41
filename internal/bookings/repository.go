package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtly/internal/resources"
	"courtly/internal/shared/apperrors"
	"courtly/pkg/lock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the guarded create has to recognize.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
	pgQueryCanceled      = "57014"
	pgLockNotAvailable   = "55P03"
)

// SkippedOccurrence records one member of a recurring series that could
// not be created. The parent and its siblings are unaffected.
type SkippedOccurrence struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    string    `json:"reason"`
}

// CreateSeriesResult is the outcome of a guarded create: the committed
// parent, the committed children, and the occurrences that were skipped.
type CreateSeriesResult struct {
	Parent   *Booking
	Children []*Booking
	Skipped  []SkippedOccurrence
}

type Repository interface {
	// CreateBookingSeries runs the whole guarded create in one
	// transaction: durable slot exclusion, in-transaction availability
	// re-check, parent insert, and per-occurrence expansion where a
	// conflicting occurrence is skipped without poisoning the rest.
	CreateBookingSeries(ctx context.Context, parent *Booking, occurrences []*Booking) (*CreateSeriesResult, error)

	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Booking, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]Booking, error)

	// UpdateStatusGuarded performs an optimistic status transition: the
	// row is only updated while still in the expected status.
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to Status, cancelledAt *time.Time) error

	// MarkPaidGuarded is the payment transition: it moves the row to
	// PAID and persists the chosen payment method in the same guarded
	// update.
	MarkPaidGuarded(ctx context.Context, id uuid.UUID, from Status, paymentMethod *string) error

	// HasSlotConflict is the read-only availability probe used outside
	// the booking transaction.
	HasSlotConflict(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error)

	// HasMaintenanceOverlap reports whether a scheduled or active
	// maintenance window covers any part of the interval.
	HasMaintenanceOverlap(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error)

	// ExpireStalePending flips PENDING bookings past their payment
	// deadline to CANCELLED. Returns the number of rows flipped.
	ExpireStalePending(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db               *gorm.DB
	txTimeout        time.Duration
	useAdvisoryLocks bool
}

// NewRepository creates a bookings repository. txTimeout bounds the
// guarded create; past it the transaction rolls back fully and the caller
// gets a retryable error.
func NewRepository(db *gorm.DB, txTimeout time.Duration, useAdvisoryLocks bool) Repository {
	if txTimeout <= 0 {
		txTimeout = 15 * time.Second
	}
	return &repository{db: db, txTimeout: txTimeout, useAdvisoryLocks: useAdvisoryLocks}
}

func (r *repository) CreateBookingSeries(ctx context.Context, parent *Booking, occurrences []*Booking) (*CreateSeriesResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, r.txTimeout)
	defer cancel()

	result := &CreateSeriesResult{Parent: parent}

	err := r.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// Durable exclusion token, scoped to the transaction. Postgres
		// releases it automatically on commit or rollback. When disabled,
		// the exclusion constraint on bookings is the sole guard.
		if r.useAdvisoryLocks {
			key := int64(lock.SlotKey(parent.CourtID, parent.StartTime, parent.EndTime))
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
				return translatePgError(err, "failed to acquire slot lock")
			}
		}

		// A stale PENDING row would trip the exclusion constraint even
		// though it no longer blocks, so expire contested rows first.
		if err := expireContestedTx(tx, parent.CourtID, parent.StartTime, parent.EndTime, now); err != nil {
			return err
		}

		if err := checkAvailabilityTx(tx, parent, now); err != nil {
			return err
		}

		if err := tx.Create(parent).Error; err != nil {
			return translatePgError(err, "failed to create booking")
		}

		for i, occ := range occurrences {
			occ.RecurringParentID = &parent.ID
			occ.IsRecurring = true

			sp := fmt.Sprintf("occ_%d", i)
			tx.SavePoint(sp)

			if err := expireContestedTx(tx, occ.CourtID, occ.StartTime, occ.EndTime, now); err != nil {
				return err
			}
			err := checkAvailabilityTx(tx, occ, now)
			if err == nil {
				err = translatePgError(tx.Create(occ).Error, "failed to create occurrence")
			}
			if err != nil {
				// Local recovery: roll back this occurrence only.
				if _, ok := apperrors.KindOf(err); !ok {
					return err
				}
				tx.RollbackTo(sp)
				result.Skipped = append(result.Skipped, SkippedOccurrence{
					StartTime: occ.StartTime,
					EndTime:   occ.EndTime,
					Reason:    err.Error(),
				})
				continue
			}
			result.Children = append(result.Children, occ)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.Wrap(apperrors.KindLockTimeout, "booking transaction timed out", err)
		}
		return nil, err
	}
	return result, nil
}

// expireContestedTx cancels stale PENDING rows overlapping the requested
// interval so they stop blocking the insert.
func expireContestedTx(tx *gorm.DB, courtID uuid.UUID, start, end, now time.Time) error {
	err := tx.Model(&Booking{}).
		Where("court_id = ?", courtID).
		Where("status = ?", StatusPending).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Where("start_time < ? AND end_time > ?", end, start).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}).Error
	return translatePgError(err, "failed to expire stale bookings")
}

// checkAvailabilityTx re-runs the availability checks against the
// transaction snapshot: slot conflicts, maintenance windows, and
// requester-level double booking.
func checkAvailabilityTx(tx *gorm.DB, b *Booking, now time.Time) error {
	conflict, err := slotConflictQuery(tx, b.CourtID, b.StartTime, b.EndTime, now)
	if err != nil {
		return translatePgError(err, "availability check failed")
	}
	if conflict {
		return apperrors.Newf(apperrors.KindSlotUnavailable,
			"court is already booked from %s to %s",
			b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))
	}

	maintenance, err := maintenanceOverlapQuery(tx, b.CourtID, b.StartTime, b.EndTime)
	if err != nil {
		return translatePgError(err, "maintenance check failed")
	}
	if maintenance {
		return apperrors.New(apperrors.KindMaintenanceWindow,
			"court is closed for maintenance during the requested time")
	}

	// The requester rule is scoped to the booking's calendar day.
	dayStart, dayEnd := DayBounds(b.StartTime, time.UTC)
	var userCount int64
	query := tx.Model(&Booking{}).
		Where("user_id = ?", b.UserID).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Where("start_time < ? AND end_time > ?", b.EndTime, b.StartTime).
		Where(blockingPredicate(tx, now))
	if err := query.Count(&userCount).Error; err != nil {
		return translatePgError(err, "user conflict check failed")
	}
	if userCount > 0 {
		return apperrors.New(apperrors.KindUserConflict,
			"you already have a booking during the requested time")
	}

	return nil
}

// blockingPredicate is the shared SQL form of the blocking-status rule:
// PAID and IN_PROGRESS always block, PENDING blocks until it expires.
func blockingPredicate(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Where("status IN ?", []Status{StatusPaid, StatusInProgress}).
		Or("status = ? AND (expires_at IS NULL OR expires_at > ?)", StatusPending, now)
}

func slotConflictQuery(tx *gorm.DB, courtID uuid.UUID, start, end, now time.Time) (bool, error) {
	var count int64
	err := tx.Model(&Booking{}).
		Where("court_id = ?", courtID).
		Where("start_time < ? AND end_time > ?", end, start).
		Where(blockingPredicate(tx, now)).
		Count(&count).Error
	return count > 0, err
}

func maintenanceOverlapQuery(tx *gorm.DB, courtID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := tx.Model(&resources.MaintenanceWindow{}).
		Where("court_id = ?", courtID).
		Where("status IN ?", []string{resources.MaintenanceScheduled, resources.MaintenanceActive}).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasSlotConflict(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	return slotConflictQuery(r.db.WithContext(ctx), courtID, start, end, time.Now().UTC())
}

func (r *repository) HasMaintenanceOverlap(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	return maintenanceOverlapQuery(r.db.WithContext(ctx), courtID, start, end)
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("recurring_parent_id = ?", parentID).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to Status, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the booking is gone or another writer moved it first.
		return apperrors.Newf(apperrors.KindValidation,
			"booking is no longer %s", from)
	}
	return nil
}

func (r *repository) MarkPaidGuarded(ctx context.Context, id uuid.UUID, from Status, paymentMethod *string) error {
	updates := map[string]interface{}{
		"status":     StatusPaid,
		"updated_at": time.Now().UTC(),
	}
	if paymentMethod != nil {
		updates["payment_method"] = *paymentMethod
	}

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.KindValidation,
			"booking is no longer %s", from)
	}
	return nil
}

func (r *repository) ExpireStalePending(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status = ?", StatusPending).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// translatePgError maps store-level failures onto the engine's error
// taxonomy. Exclusion and unique violations mean someone else holds the
// slot; canceled statements and lock waits are retryable.
func translatePgError(err error, message string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return apperrors.Wrap(apperrors.KindSlotUnavailable, "slot was taken by a concurrent booking", err)
		case pgQueryCanceled, pgLockNotAvailable:
			return apperrors.Wrap(apperrors.KindLockTimeout, "database lock wait timed out", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindLockTimeout, message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
