package pricing

import (
	"context"
	"errors"

	"courtly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// ListActiveRules returns the active rules that can ever apply to the
	// court: court-scoped rules plus facility-wide rules of its facility.
	ListActiveRules(ctx context.Context, facilityID, courtID uuid.UUID) ([]PricingRule, error)

	ListRulesByFacility(ctx context.Context, facilityID uuid.UUID) ([]PricingRule, error)
	GetRuleByID(ctx context.Context, id uuid.UUID) (*PricingRule, error)
	CreateRule(ctx context.Context, rule *PricingRule) error
	UpdateRule(ctx context.Context, rule *PricingRule) error
	DeactivateRule(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActiveRules(ctx context.Context, facilityID, courtID uuid.UUID) ([]PricingRule, error) {
	var rules []PricingRule
	err := r.db.WithContext(ctx).
		Where("facility_id = ? AND is_active = ?", facilityID, true).
		Where("court_id IS NULL OR court_id = ?", courtID).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) ListRulesByFacility(ctx context.Context, facilityID uuid.UUID) ([]PricingRule, error) {
	var rules []PricingRule
	err := r.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) GetRuleByID(ctx context.Context, id uuid.UUID) (*PricingRule, error) {
	var rule PricingRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "pricing rule not found")
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) CreateRule(ctx context.Context, rule *PricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) UpdateRule(ctx context.Context, rule *PricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *repository) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&PricingRule{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "pricing rule not found")
	}
	return nil
}
