package cancellation

import (
	"context"
	"errors"

	"courtly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetPolicyByCourtID(ctx context.Context, courtID uuid.UUID) (*CancellationPolicy, error)
	UpsertPolicy(ctx context.Context, policy *CancellationPolicy) error

	CreateCancellation(ctx context.Context, record *Cancellation) error
	GetCancellationByBookingID(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetPolicyByCourtID(ctx context.Context, courtID uuid.UUID) (*CancellationPolicy, error) {
	var policy CancellationPolicy
	err := r.db.WithContext(ctx).Where("court_id = ?", courtID).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "cancellation policy not found")
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) UpsertPolicy(ctx context.Context, policy *CancellationPolicy) error {
	var existing CancellationPolicy
	err := r.db.WithContext(ctx).Where("court_id = ?", policy.CourtID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(policy).Error
		}
		return err
	}
	policy.ID = existing.ID
	policy.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(policy).Error
}

func (r *repository) CreateCancellation(ctx context.Context, record *Cancellation) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetCancellationByBookingID(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error) {
	var record Cancellation
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "cancellation not found")
		}
		return nil, err
	}
	return &record, nil
}
