package bookings

import (
	"testing"
	"time"
)

func TestIntervalsOverlap(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"disjoint", at(0), at(1), at(2), at(3), false},
		{"touching endpoints do not conflict", at(0), at(1), at(1), at(2), false},
		{"touching the other way", at(1), at(2), at(0), at(1), false},
		{"partial overlap", at(0), at(2), at(1), at(3), true},
		{"containment", at(0), at(4), at(1), at(2), true},
		{"identical", at(0), at(1), at(0), at(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalsOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Fatalf("IntervalsOverlap = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := IntervalsOverlap(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Fatalf("IntervalsOverlap (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingBlocks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		status    Status
		expiresAt *time.Time
		want      bool
	}{
		{"paid blocks", StatusPaid, nil, true},
		{"in progress blocks", StatusInProgress, nil, true},
		{"pending unexpired blocks", StatusPending, &future, true},
		{"pending without deadline blocks", StatusPending, nil, true},
		{"pending expired does not block", StatusPending, &past, false},
		{"cancelled does not block", StatusCancelled, nil, false},
		{"completed does not block", StatusCompleted, nil, false},
		{"no-show does not block", StatusNoShow, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := b.Blocks(now); got != tt.want {
				t.Fatalf("Blocks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	instant := time.Date(2025, 6, 1, 15, 45, 0, 0, time.UTC)
	start, end := DayBounds(instant, time.UTC)

	if !start.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day start = %v", start)
	}
	if !end.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day end = %v", end)
	}
}
