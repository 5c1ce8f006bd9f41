package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Domain event types emitted by the booking engine. Downstream consumers
// (payment reminders, refund evaluation, waiting-list promotion) react to
// these asynchronously.
const (
	EventBookingPending   = "BOOKING_PENDING"
	EventBookingCancelled = "BOOKING_CANCELLED"
)

// BookingEvent is the payload published for every booking lifecycle event.
type BookingEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	BookingID uuid.UUID `json:"booking_id"`
	CourtID   uuid.UUID `json:"court_id"`
	UserID    uuid.UUID `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// NewBookingEvent builds an event envelope with a fresh id and timestamp.
func NewBookingEvent(eventType string, bookingID, courtID, userID uuid.UUID, start, end time.Time, status, reason string) *BookingEvent {
	return &BookingEvent{
		ID:        uuid.New(),
		Type:      eventType,
		BookingID: bookingID,
		CourtID:   courtID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
		Reason:    reason,
		EmittedAt: time.Now().UTC(),
	}
}

// ToJSON serializes the event for the wire.
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one court to the same partition so
// consumers observe them in order.
func (e *BookingEvent) PartitionKey() string {
	return e.CourtID.String()
}
