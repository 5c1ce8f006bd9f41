package resources

import (
	"context"
	"errors"
	"time"

	"courtly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Courts
	GetCourtByID(ctx context.Context, id uuid.UUID) (*Court, error)
	ListCourts(ctx context.Context, facilityID *uuid.UUID, activeOnly bool) ([]Court, error)
	CreateCourt(ctx context.Context, court *Court) error
	UpdateCourt(ctx context.Context, court *Court) error

	// Facilities and policies
	CreateFacility(ctx context.Context, facility *Facility) error
	GetPolicyByFacilityID(ctx context.Context, facilityID uuid.UUID) (*FacilityPolicy, error)
	UpsertPolicy(ctx context.Context, policy *FacilityPolicy) error

	// Maintenance windows
	CreateMaintenanceWindow(ctx context.Context, window *MaintenanceWindow) error
	ListMaintenanceWindows(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]MaintenanceWindow, error)
	UpdateMaintenanceStatus(ctx context.Context, id uuid.UUID, status string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCourtByID(ctx context.Context, id uuid.UUID) (*Court, error) {
	var court Court
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&court).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "court %s not found", id)
		}
		return nil, err
	}
	return &court, nil
}

func (r *repository) ListCourts(ctx context.Context, facilityID *uuid.UUID, activeOnly bool) ([]Court, error) {
	var courts []Court
	query := r.db.WithContext(ctx).Model(&Court{})
	if facilityID != nil {
		query = query.Where("facility_id = ?", *facilityID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&courts).Error
	return courts, err
}

func (r *repository) CreateCourt(ctx context.Context, court *Court) error {
	return r.db.WithContext(ctx).Create(court).Error
}

func (r *repository) UpdateCourt(ctx context.Context, court *Court) error {
	court.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(court).Error
}

func (r *repository) CreateFacility(ctx context.Context, facility *Facility) error {
	return r.db.WithContext(ctx).Create(facility).Error
}

func (r *repository) GetPolicyByFacilityID(ctx context.Context, facilityID uuid.UUID) (*FacilityPolicy, error) {
	var policy FacilityPolicy
	err := r.db.WithContext(ctx).Where("facility_id = ?", facilityID).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "no policy for facility %s", facilityID)
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repository) UpsertPolicy(ctx context.Context, policy *FacilityPolicy) error {
	var existing FacilityPolicy
	err := r.db.WithContext(ctx).Where("facility_id = ?", policy.FacilityID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(policy).Error
	}
	if err != nil {
		return err
	}
	policy.ID = existing.ID
	policy.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(policy).Error
}

func (r *repository) CreateMaintenanceWindow(ctx context.Context, window *MaintenanceWindow) error {
	return r.db.WithContext(ctx).Create(window).Error
}

func (r *repository) ListMaintenanceWindows(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]MaintenanceWindow, error) {
	var windows []MaintenanceWindow
	err := r.db.WithContext(ctx).
		Where("court_id = ?", courtID).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC").
		Find(&windows).Error
	return windows, err
}

func (r *repository) UpdateMaintenanceStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&MaintenanceWindow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "maintenance window %s not found", id)
	}
	return nil
}
