package memberships

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// ActiveTier returns the tier of the user's membership covering the
	// given instant, or ok=false when none does.
	ActiveTier(ctx context.Context, userID uuid.UUID, at time.Time) (Tier, bool, error)
	Create(ctx context.Context, membership *Membership) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ActiveTier(ctx context.Context, userID uuid.UUID, at time.Time) (Tier, bool, error) {
	var membership Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("valid_from <= ? AND valid_until > ?", at, at).
		Order("valid_until DESC").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return membership.Tier, true, nil
}

func (r *repository) Create(ctx context.Context, membership *Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}
