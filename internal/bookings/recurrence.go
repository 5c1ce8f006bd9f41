package bookings

import (
	"time"

	"courtly/internal/shared/apperrors"
)

// Frequency of a recurring series. MONTHLY uses a fixed 30-day step rather
// than calendar months so the occurrence cadence is uniform.
type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

func (f Frequency) stepDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	}
	return 0
}

// ParseFrequency normalizes a frequency string.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(raw) {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return Frequency(raw), nil
	}
	return "", apperrors.Newf(apperrors.KindValidation, "unknown recurrence frequency %q", raw)
}

// Recurrence describes how a parent booking expands into a series.
type Recurrence struct {
	Frequency Frequency
	// Weekdays filters candidate dates; empty means the parent's weekday.
	Weekdays []time.Weekday
	// EndDate is the last date (inclusive) a candidate may start on.
	EndDate time.Time
	// ExceptionDates lists calendar dates to skip.
	ExceptionDates []time.Time
}

// ExpandOccurrences generates the start times of the child occurrences of
// a series. Candidates step by the frequency's fixed day increment from
// the parent start, keep the parent's clock time and duration, and stop at
// min(EndDate, horizon). The parent itself is not returned.
func ExpandOccurrences(parentStart time.Time, rec Recurrence, horizon time.Time) []time.Time {
	step := rec.Frequency.stepDays()
	if step == 0 {
		return nil
	}

	allowed := make(map[time.Weekday]bool, len(rec.Weekdays))
	for _, d := range rec.Weekdays {
		allowed[d] = true
	}
	if len(allowed) == 0 {
		allowed[parentStart.Weekday()] = true
	}

	exceptions := make(map[string]bool, len(rec.ExceptionDates))
	for _, d := range rec.ExceptionDates {
		exceptions[d.Format("2006-01-02")] = true
	}

	// End of the last allowed start date, whichever bound is tighter.
	limit := rec.EndDate
	if horizon.Before(limit) {
		limit = horizon
	}

	var out []time.Time
	for candidate := parentStart.AddDate(0, 0, step); !candidate.After(limit); candidate = candidate.AddDate(0, 0, step) {
		if !allowed[candidate.Weekday()] {
			continue
		}
		if exceptions[candidate.Format("2006-01-02")] {
			continue
		}
		out = append(out, candidate)
	}
	return out
}
