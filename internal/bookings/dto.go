package bookings

import (
	"time"
)

// CreateBookingRequest represents the booking creation payload
type CreateBookingRequest struct {
	CourtID         string             `json:"court_id" binding:"required,uuid"`
	StartTime       time.Time          `json:"start_time" binding:"required"`
	DurationMinutes int                `json:"duration_minutes" binding:"required,min=1"`
	Kind            string             `json:"kind" binding:"omitempty,oneof=STANDARD ADMINISTRATIVE"`
	PaymentMethod   *string            `json:"payment_method"`
	Notes           string             `json:"notes"`
	Recurrence      *RecurrenceRequest `json:"recurrence"`
}

// RecurrenceRequest represents the recurrence section of a create payload
type RecurrenceRequest struct {
	Frequency      string      `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	Weekdays       []int       `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
	EndDate        time.Time   `json:"end_date" binding:"required"`
	ExceptionDates []time.Time `json:"exception_dates"`
}

func (req *RecurrenceRequest) toRecurrence() Recurrence {
	days := make([]time.Weekday, 0, len(req.Weekdays))
	for _, d := range req.Weekdays {
		days = append(days, time.Weekday(d))
	}
	return Recurrence{
		Frequency:      Frequency(req.Frequency),
		Weekdays:       days,
		EndDate:        req.EndDate,
		ExceptionDates: req.ExceptionDates,
	}
}

// MarkPaidRequest represents the payment confirmation payload
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// SeriesResponse is the create-booking response body.
type SeriesResponse struct {
	Booking     *Booking            `json:"booking"`
	Occurrences []*Booking          `json:"occurrences,omitempty"`
	Skipped     []SkippedOccurrence `json:"skipped_occurrences,omitempty"`
}

// AvailabilityResponse is the availability probe response body.
type AvailabilityResponse struct {
	CourtID   string    `json:"court_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
}
