package memberships

import (
	"time"

	"github.com/google/uuid"
)

type Tier string

const (
	TierStandard Tier = "STANDARD"
	TierGold     Tier = "GOLD"
)

// Membership is read-only input to the pricing engine: it is consulted for
// the member discount, never mutated by the booking flow. Plan management
// lives in an external admin surface.
type Membership struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Tier       Tier      `gorm:"type:varchar(20);not null;default:'STANDARD'" json:"tier"`
	ValidFrom  time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil time.Time `gorm:"not null" json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Membership) TableName() string { return "memberships" }

// ActiveAt reports whether the membership covers the given instant.
func (m *Membership) ActiveAt(at time.Time) bool {
	return !at.Before(m.ValidFrom) && at.Before(m.ValidUntil)
}
