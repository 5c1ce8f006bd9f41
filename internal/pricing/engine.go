package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteInput is everything a price calculation depends on. Calculate is a
// pure function of this input and the rule slice, which is what makes
// quoting deterministic and trivially testable.
type QuoteInput struct {
	BasePricePerHour    decimal.Decimal
	Start               time.Time
	DurationMinutes     int
	HasActiveMembership bool
}

var (
	sixty = decimal.NewFromInt(60)
	one   = decimal.NewFromInt(1)
)

// Calculate computes the price breakdown for a candidate slot.
//
// Rules apply when the booking weekday is in the rule's weekday set, the
// booking date falls inside the rule's season window (inclusive), and the
// rule's time-of-day window overlaps the booking's clock-time interval.
// Applicable multipliers compose multiplicatively; the member discount is
// the maximum discount among applicable rules. Ordering is fixed
// (multiplier descending, then creation order ascending) so that repeated
// calls with an unchanged rule set return identical breakdowns.
func Calculate(in QuoteInput, rules []PricingRule) PriceBreakdown {
	basePrice := in.BasePricePerHour.
		Mul(decimal.NewFromInt(int64(in.DurationMinutes))).
		Div(sixty)

	applicable := selectApplicable(in.Start, in.DurationMinutes, rules)
	sortRules(applicable)

	finalMultiplier := one
	maxDiscount := decimal.Zero
	for _, rule := range applicable {
		finalMultiplier = finalMultiplier.Mul(rule.Multiplier)
		if rule.MemberDiscount.GreaterThan(maxDiscount) {
			maxDiscount = rule.MemberDiscount
		}
	}

	memberDiscount := decimal.Zero
	if in.HasActiveMembership {
		memberDiscount = maxDiscount
	}

	subtotal := basePrice.Mul(finalMultiplier)
	discountAmount := subtotal.Mul(memberDiscount)
	total := subtotal.Sub(discountAmount)

	lines := make([]BreakdownLine, 0, len(applicable)+2)
	lines = append(lines, BreakdownLine{
		Kind:   LineBase,
		Label:  "Base price",
		Amount: basePrice,
	})
	running := basePrice
	for _, rule := range applicable {
		if rule.Multiplier.Equal(one) {
			continue
		}
		next := running.Mul(rule.Multiplier)
		m := rule.Multiplier
		lines = append(lines, BreakdownLine{
			Kind:       LineRule,
			Label:      rule.Name,
			Multiplier: &m,
			Amount:     next.Sub(running),
		})
		running = next
	}
	if discountAmount.IsPositive() {
		lines = append(lines, BreakdownLine{
			Kind:   LineDiscount,
			Label:  "Member discount",
			Amount: discountAmount.Neg(),
		})
	}

	return PriceBreakdown{
		BasePrice:       basePrice,
		FinalMultiplier: finalMultiplier,
		Subtotal:        subtotal,
		MemberDiscount:  memberDiscount,
		DiscountAmount:  discountAmount,
		Total:           total,
		Lines:           lines,
	}
}

// selectApplicable filters rules down to the ones matching the slot.
func selectApplicable(start time.Time, durationMinutes int, rules []PricingRule) []PricingRule {
	startMinute := start.Hour()*60 + start.Minute()
	endMinute := startMinute + durationMinutes
	weekday := start.Weekday()
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var applicable []PricingRule
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if !rule.WeekdaySet()[weekday] {
			continue
		}
		if rule.SeasonStart != nil && date.Before(dateOnly(*rule.SeasonStart)) {
			continue
		}
		if rule.SeasonEnd != nil && date.After(dateOnly(*rule.SeasonEnd)) {
			continue
		}
		// Clock-time overlap only, half-open on both sides.
		if rule.StartMinute >= endMinute || rule.EndMinute <= startMinute {
			continue
		}
		applicable = append(applicable, rule)
	}
	return applicable
}

// sortRules orders by multiplier descending, then creation order
// ascending, then ID, so the ordering is total and reproducible.
func sortRules(rules []PricingRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		cmp := rules[i].Multiplier.Cmp(rules[j].Multiplier)
		if cmp != 0 {
			return cmp > 0
		}
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID.String() < rules[j].ID.String()
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
