package pricing

import (
	"context"
	"time"

	"courtly/internal/memberships"
	"courtly/internal/resources"
	"courtly/internal/shared/apperrors"
	"courtly/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for pricing business logic
type Service interface {
	// Quote prices a candidate slot. userID may be nil for anonymous
	// quotes, in which case no membership discount is applied.
	Quote(ctx context.Context, userID *uuid.UUID, courtID uuid.UUID, start time.Time, durationMinutes int) (*PriceBreakdown, error)

	ListRules(ctx context.Context, facilityID uuid.UUID) ([]PricingRule, error)
	CreateRule(ctx context.Context, rule *PricingRule) error
	UpdateRule(ctx context.Context, rule *PricingRule) error
	DeactivateRule(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        Repository
	courts      resources.Service
	memberships memberships.Repository
	cache       cache.Service
	ruleTTL     time.Duration
}

// NewService creates a new pricing service instance. cacheSvc may be nil
// to disable the rule cache.
func NewService(repo Repository, courts resources.Service, membershipRepo memberships.Repository, cacheSvc cache.Service, ruleTTL time.Duration) Service {
	return &service{
		repo:        repo,
		courts:      courts,
		memberships: membershipRepo,
		cache:       cacheSvc,
		ruleTTL:     ruleTTL,
	}
}

func (s *service) Quote(ctx context.Context, userID *uuid.UUID, courtID uuid.UUID, start time.Time, durationMinutes int) (*PriceBreakdown, error) {
	if durationMinutes <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "duration must be positive")
	}

	court, err := s.courts.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}

	rules, err := s.rulesForCourt(ctx, court.FacilityID, courtID)
	if err != nil {
		return nil, err
	}

	hasMembership := false
	if userID != nil {
		_, ok, err := s.memberships.ActiveTier(ctx, *userID, start)
		if err != nil {
			return nil, err
		}
		hasMembership = ok
	}

	breakdown := Calculate(QuoteInput{
		BasePricePerHour:    court.BasePricePerHour,
		Start:               start,
		DurationMinutes:     durationMinutes,
		HasActiveMembership: hasMembership,
	}, rules)
	return &breakdown, nil
}

// rulesForCourt reads the court's rule set through the cache. The cached
// set is the superset of rules that can ever apply to the court; the
// engine filters per slot.
func (s *service) rulesForCourt(ctx context.Context, facilityID, courtID uuid.UUID) ([]PricingRule, error) {
	if s.cache == nil {
		return s.repo.ListActiveRules(ctx, facilityID, courtID)
	}

	var rules []PricingRule
	err := s.cache.GetOrSet(ctx, cache.RuleSetKey(courtID.String()), s.ruleTTL, func() (interface{}, error) {
		return s.repo.ListActiveRules(ctx, facilityID, courtID)
	}, &rules)
	if err != nil {
		return s.repo.ListActiveRules(ctx, facilityID, courtID)
	}
	return rules, nil
}

func (s *service) ListRules(ctx context.Context, facilityID uuid.UUID) ([]PricingRule, error) {
	return s.repo.ListRulesByFacility(ctx, facilityID)
}

func (s *service) CreateRule(ctx context.Context, rule *PricingRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return err
	}
	s.invalidateRuleCache(ctx)
	return nil
}

func (s *service) UpdateRule(ctx context.Context, rule *PricingRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if _, err := s.repo.GetRuleByID(ctx, rule.ID); err != nil {
		return err
	}
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return err
	}
	s.invalidateRuleCache(ctx)
	return nil
}

func (s *service) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateRule(ctx, id); err != nil {
		return err
	}
	s.invalidateRuleCache(ctx)
	return nil
}

// invalidateRuleCache drops every cached rule set. Facility-wide rules can
// affect any court of the facility, so per-key invalidation buys nothing.
func (s *service) invalidateRuleCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, cache.RuleSetPattern())
}

func validateRule(rule *PricingRule) error {
	if rule.Name == "" {
		return apperrors.New(apperrors.KindValidation, "rule name is required")
	}
	if rule.StartMinute < 0 || rule.EndMinute > 24*60 || rule.StartMinute >= rule.EndMinute {
		return apperrors.New(apperrors.KindValidation, "invalid time-of-day window")
	}
	if len(rule.WeekdaySet()) == 0 {
		return apperrors.New(apperrors.KindValidation, "rule must apply to at least one weekday")
	}
	if !rule.Multiplier.IsPositive() {
		return apperrors.New(apperrors.KindValidation, "multiplier must be positive")
	}
	if rule.MemberDiscount.IsNegative() || rule.MemberDiscount.GreaterThan(one) {
		return apperrors.New(apperrors.KindValidation, "member discount must be between 0 and 1")
	}
	if rule.SeasonStart != nil && rule.SeasonEnd != nil && rule.SeasonEnd.Before(*rule.SeasonStart) {
		return apperrors.New(apperrors.KindValidation, "season end must not precede season start")
	}
	return nil
}
