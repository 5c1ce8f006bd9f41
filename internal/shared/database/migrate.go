package database

import (
	"courtly/internal/bookings"
	"courtly/internal/cancellation"
	"courtly/internal/memberships"
	"courtly/internal/pricing"
	"courtly/internal/resources"
	"courtly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&resources.Facility{},
		&resources.Court{},
		&resources.FacilityPolicy{},
		&resources.MaintenanceWindow{},
		&pricing.PricingRule{},
		&memberships.Membership{},
		&bookings.Booking{},
		&cancellation.CancellationPolicy{},
		&cancellation.Cancellation{},
	)
}
