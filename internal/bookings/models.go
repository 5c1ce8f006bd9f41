package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is a reservation of one court over a half-open interval
// [StartTime, EndTime). The store enforces that blocking bookings on the
// same court never overlap; see the exclusion constraint in
// internal/shared/database.
type Booking struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourtID uuid.UUID `gorm:"type:uuid;index;not null" json:"court_id"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`

	Status Status `gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','PAID','IN_PROGRESS','COMPLETED','CANCELLED','NO_SHOW')" json:"status"`
	Kind   Kind   `gorm:"type:varchar(20);not null;default:'STANDARD';check:kind IN ('STANDARD','ADMINISTRATIVE')" json:"kind"`

	PaymentMethod *string `gorm:"type:varchar(20)" json:"payment_method,omitempty"`

	// ExpiresAt is the payment deadline while PENDING; nil once not
	// applicable (administrative bookings keep it set to start).
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Recurrence links are parent -> children only. Children carry the
	// parent id; the parent carries no back-pointers.
	IsRecurring       bool       `gorm:"default:false" json:"is_recurring"`
	RecurringParentID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_parent_id,omitempty"`

	Notes       string     `json:"notes,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Blocks reports whether the booking counts toward conflict detection at
// the given instant.
func (b *Booking) Blocks(now time.Time) bool {
	switch b.Status {
	case StatusPaid, StatusInProgress:
		return true
	case StatusPending:
		return b.ExpiresAt == nil || b.ExpiresAt.After(now)
	}
	return false
}

// DurationMinutes returns the booked duration in whole minutes.
func (b *Booking) DurationMinutes() int {
	return int(b.EndTime.Sub(b.StartTime) / time.Minute)
}
