package resources

import (
	"context"
	"time"

	"courtly/internal/shared/apperrors"
	"courtly/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for resource business logic
type Service interface {
	GetCourt(ctx context.Context, id uuid.UUID) (*Court, error)
	ListCourts(ctx context.Context, facilityID *uuid.UUID) ([]Court, error)
	CreateCourt(ctx context.Context, court *Court) error

	// PolicyForCourt resolves the facility policy governing a court,
	// falling back to defaults when the facility has no policy row.
	PolicyForCourt(ctx context.Context, courtID uuid.UUID) (*FacilityPolicy, error)

	ScheduleMaintenance(ctx context.Context, window *MaintenanceWindow) error
	ListMaintenance(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]MaintenanceWindow, error)
	CompleteMaintenance(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo               Repository
	cache              cache.Service
	courtCacheTTL      time.Duration
	defaultAdvanceDays int
}

// NewService creates a new resource service instance. cacheSvc may be nil,
// in which case reads go straight to the database.
func NewService(repo Repository, cacheSvc cache.Service, courtCacheTTL time.Duration, defaultAdvanceDays int) Service {
	return &service{
		repo:               repo,
		cache:              cacheSvc,
		courtCacheTTL:      courtCacheTTL,
		defaultAdvanceDays: defaultAdvanceDays,
	}
}

func (s *service) GetCourt(ctx context.Context, id uuid.UUID) (*Court, error) {
	if s.cache == nil {
		return s.repo.GetCourtByID(ctx, id)
	}

	var court Court
	err := s.cache.GetOrSet(ctx, cache.CourtKey(id.String()), s.courtCacheTTL, func() (interface{}, error) {
		return s.repo.GetCourtByID(ctx, id)
	}, &court)
	if err != nil {
		// Cache-path failures fall back to the repository so a cache outage
		// never turns into a booking outage.
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, err
		}
		return s.repo.GetCourtByID(ctx, id)
	}
	return &court, nil
}

func (s *service) ListCourts(ctx context.Context, facilityID *uuid.UUID) ([]Court, error) {
	return s.repo.ListCourts(ctx, facilityID, true)
}

func (s *service) CreateCourt(ctx context.Context, court *Court) error {
	if court.Name == "" {
		return apperrors.New(apperrors.KindValidation, "court name is required")
	}
	if court.BasePricePerHour.IsNegative() {
		return apperrors.New(apperrors.KindValidation, "base price must not be negative")
	}
	if err := s.repo.CreateCourt(ctx, court); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.CourtKey(court.ID.String()))
	}
	return nil
}

func (s *service) PolicyForCourt(ctx context.Context, courtID uuid.UUID) (*FacilityPolicy, error) {
	court, err := s.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}

	policy, err := s.repo.GetPolicyByFacilityID(ctx, court.FacilityID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return &FacilityPolicy{
				FacilityID:     court.FacilityID,
				OpenMinute:     6 * 60,
				CloseMinute:    23 * 60,
				MaxAdvanceDays: s.defaultAdvanceDays,
			}, nil
		}
		return nil, err
	}
	return policy, nil
}

func (s *service) ScheduleMaintenance(ctx context.Context, window *MaintenanceWindow) error {
	if !window.EndTime.After(window.StartTime) {
		return apperrors.New(apperrors.KindValidation, "maintenance window end must be after start")
	}
	if _, err := s.repo.GetCourtByID(ctx, window.CourtID); err != nil {
		return err
	}
	window.Status = MaintenanceScheduled
	return s.repo.CreateMaintenanceWindow(ctx, window)
}

func (s *service) ListMaintenance(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]MaintenanceWindow, error) {
	return s.repo.ListMaintenanceWindows(ctx, courtID, from, to)
}

func (s *service) CompleteMaintenance(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateMaintenanceStatus(ctx, id, MaintenanceCompleted)
}
