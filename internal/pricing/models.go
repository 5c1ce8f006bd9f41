package pricing

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingRule adjusts the base price of a slot. A rule scoped to a court
// applies to that court only; a rule with a nil CourtID applies to every
// court of its facility. Rules are treated as immutable during a single
// price calculation; they may change between calculations.
type PricingRule struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FacilityID uuid.UUID  `gorm:"type:uuid;index;not null" json:"facility_id"`
	CourtID    *uuid.UUID `gorm:"type:uuid;index" json:"court_id,omitempty"`
	Name       string     `gorm:"not null" json:"name"`

	// Time-of-day window, minutes since midnight, half-open [start, end).
	StartMinute int `gorm:"not null" json:"start_minute"`
	EndMinute   int `gorm:"not null" json:"end_minute"`

	// Weekdays is a comma-separated list of time.Weekday values ("0" is Sunday).
	Weekdays string `gorm:"not null" json:"weekdays"`

	// Optional season window, dates inclusive on both ends.
	SeasonStart *time.Time `json:"season_start,omitempty"`
	SeasonEnd   *time.Time `json:"season_end,omitempty"`

	Multiplier     decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"multiplier"`
	MemberDiscount decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"member_discount"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (PricingRule) TableName() string { return "pricing_rules" }

// WeekdaySet parses the stored weekday list. Malformed entries are
// skipped rather than failing the calculation.
func (r *PricingRule) WeekdaySet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool)
	for _, part := range strings.Split(r.Weekdays, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if day, err := strconv.Atoi(part); err == nil && day >= 0 && day <= 6 {
			set[time.Weekday(day)] = true
		}
	}
	return set
}

// EncodeWeekdays renders a weekday set into the stored CSV form.
func EncodeWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

// Breakdown line kinds.
const (
	LineBase     = "BASE"
	LineRule     = "RULE"
	LineDiscount = "DISCOUNT"
)

// BreakdownLine is one item of the price breakdown returned for receipts.
type BreakdownLine struct {
	Kind       string           `json:"kind"`
	Label      string           `json:"label"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	Amount     decimal.Decimal  `json:"amount"`
}

// PriceBreakdown is the full result of a price calculation. All values are
// exact decimals; rounding happens only when rendering.
type PriceBreakdown struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	FinalMultiplier decimal.Decimal `json:"final_multiplier"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	MemberDiscount  decimal.Decimal `json:"member_discount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	Lines           []BreakdownLine `json:"lines"`
}
