package main

import (
	"fmt"
	"log"
	"time"

	"courtly/internal/cancellation"
	"courtly/internal/memberships"
	"courtly/internal/pricing"
	"courtly/internal/resources"
	"courtly/internal/shared/config"
	"courtly/internal/shared/database"
	"courtly/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB

	facilityID uuid.UUID
	courtIDs   []uuid.UUID
	userIDs    map[string]uuid.UUID
}

func main() {
	fmt.Println("🌱 Starting Courtly Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, userIDs: make(map[string]uuid.UUID)}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"cancellations",
		"cancellation_policies",
		"bookings",
		"pricing_rules",
		"memberships",
		"maintenance_windows",
		"facility_policies",
		"courts",
		"facilities",
		"users",
	}
	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"users", s.seedUsers},
		{"facility and courts", s.seedFacilityAndCourts},
		{"pricing rules", s.seedPricingRules},
		{"memberships", s.seedMemberships},
		{"cancellation policies", s.seedCancellationPolicies},
	}
	for _, step := range steps {
		fmt.Printf("  • seeding %s...\n", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("seeding %s: %w", step.name, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	seedUsers := []users.User{
		{FirstName: "Ada", LastName: "Admin", Email: "admin@courtly.dev", Role: users.RoleAdmin},
		{FirstName: "Olga", LastName: "Operator", Email: "operator@courtly.dev", Role: users.RoleOperator},
		{FirstName: "Max", LastName: "Member", Email: "member@courtly.dev", Role: users.RoleUser},
		{FirstName: "Gina", LastName: "Guest", Email: "guest@courtly.dev", Role: users.RoleUser},
	}
	for i := range seedUsers {
		seedUsers[i].Password = string(hash)
		if err := s.db.PostgreSQL.Create(&seedUsers[i]).Error; err != nil {
			return err
		}
		s.userIDs[seedUsers[i].Email] = seedUsers[i].ID
	}
	return nil
}

func (s *Seeder) seedFacilityAndCourts() error {
	facility := resources.Facility{
		Name:     "Riverside Racquet Club",
		Address:  "12 Embankment Road",
		Timezone: "UTC",
	}
	if err := s.db.PostgreSQL.Create(&facility).Error; err != nil {
		return err
	}
	s.facilityID = facility.ID

	policy := resources.FacilityPolicy{
		FacilityID:     facility.ID,
		OpenMinute:     6 * 60,
		CloseMinute:    23 * 60,
		MaxAdvanceDays: 30,
	}
	if err := s.db.PostgreSQL.Create(&policy).Error; err != nil {
		return err
	}

	courts := []resources.Court{
		{FacilityID: facility.ID, Name: "Court A", Surface: "hard", Indoor: false, BasePricePerHour: decimal.NewFromInt(20), IsActive: true},
		{FacilityID: facility.ID, Name: "Court B", Surface: "clay", Indoor: false, BasePricePerHour: decimal.NewFromInt(24), IsActive: true},
		{FacilityID: facility.ID, Name: "Centre Court", Surface: "grass", Indoor: true, BasePricePerHour: decimal.NewFromInt(35), IsActive: true},
	}
	for i := range courts {
		if err := s.db.PostgreSQL.Create(&courts[i]).Error; err != nil {
			return err
		}
		s.courtIDs = append(s.courtIDs, courts[i].ID)
	}

	// A maintenance blackout two weeks out on Court B.
	window := resources.MaintenanceWindow{
		CourtID:   courts[1].ID,
		StartTime: nextDayAt(14, 8, 0),
		EndTime:   nextDayAt(14, 12, 0),
		Reason:    "clay resurfacing",
		Status:    resources.MaintenanceScheduled,
	}
	return s.db.PostgreSQL.Create(&window).Error
}

func (s *Seeder) seedPricingRules() error {
	evenings := pricing.PricingRule{
		FacilityID:  s.facilityID,
		Name:        "evening peak",
		StartMinute: 17 * 60,
		EndMinute:   21 * 60,
		Weekdays: pricing.EncodeWeekdays([]time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		}),
		Multiplier:     decimal.RequireFromString("1.5"),
		MemberDiscount: decimal.RequireFromString("0.10"),
		IsActive:       true,
	}
	if err := s.db.PostgreSQL.Create(&evenings).Error; err != nil {
		return err
	}

	weekends := pricing.PricingRule{
		FacilityID:  s.facilityID,
		Name:        "weekend",
		StartMinute: 8 * 60,
		EndMinute:   22 * 60,
		Weekdays:    pricing.EncodeWeekdays([]time.Weekday{time.Saturday, time.Sunday}),
		Multiplier:  decimal.RequireFromString("1.25"),
		IsActive:    true,
	}
	if err := s.db.PostgreSQL.Create(&weekends).Error; err != nil {
		return err
	}

	// Summer season surcharge on Centre Court only.
	seasonStart := time.Date(time.Now().Year(), 6, 1, 0, 0, 0, 0, time.UTC)
	seasonEnd := time.Date(time.Now().Year(), 8, 31, 0, 0, 0, 0, time.UTC)
	centreCourt := s.courtIDs[2]
	summer := pricing.PricingRule{
		FacilityID:  s.facilityID,
		CourtID:     &centreCourt,
		Name:        "summer season",
		StartMinute: 0,
		EndMinute:   24 * 60,
		Weekdays: pricing.EncodeWeekdays([]time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		}),
		SeasonStart:    &seasonStart,
		SeasonEnd:      &seasonEnd,
		Multiplier:     decimal.RequireFromString("1.2"),
		MemberDiscount: decimal.RequireFromString("0.05"),
		IsActive:       true,
	}
	return s.db.PostgreSQL.Create(&summer).Error
}

func (s *Seeder) seedMemberships() error {
	now := time.Now().UTC()
	membership := memberships.Membership{
		UserID:     s.userIDs["member@courtly.dev"],
		Tier:       memberships.TierGold,
		ValidFrom:  now.AddDate(0, -1, 0),
		ValidUntil: now.AddDate(1, 0, 0),
	}
	return s.db.PostgreSQL.Create(&membership).Error
}

func (s *Seeder) seedCancellationPolicies() error {
	policy := cancellation.CancellationPolicy{
		CourtID:              s.courtIDs[0],
		AllowCancellation:    true,
		CutoffHours:          24,
		FeeType:              cancellation.FeePercentage,
		FeeAmount:            decimal.RequireFromString("0.25"),
		RefundProcessingDays: 5,
	}
	return s.db.PostgreSQL.Create(&policy).Error
}

// nextDayAt returns the instant daysAhead days from now at hh:mm UTC.
func nextDayAt(daysAhead, hour, minute int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, daysAhead)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}
