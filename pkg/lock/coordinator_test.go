package lock

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestCoordinator(ttl time.Duration, capacity int) (*Coordinator, *time.Time) {
	c := NewCoordinator(ttl, capacity)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestAcquireAndConflict(t *testing.T) {
	c, _ := newTestCoordinator(30*time.Second, 16)
	court := uuid.New()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	if !c.Acquire(court, start, end, "holder-a") {
		t.Fatal("first acquire should succeed")
	}
	if c.Acquire(court, start, end, "holder-b") {
		t.Fatal("second holder must not acquire a live slot")
	}
	// Same holder renews.
	if !c.Acquire(court, start, end, "holder-a") {
		t.Fatal("same holder should renew")
	}

	// A different interval on the same court is a different key.
	if !c.Acquire(court, end, end.Add(time.Hour), "holder-b") {
		t.Fatal("non-overlapping slot should be acquirable")
	}
}

func TestExpiryIsLazy(t *testing.T) {
	c, now := newTestCoordinator(30*time.Second, 16)
	court := uuid.New()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	if !c.Acquire(court, start, end, "holder-a") {
		t.Fatal("acquire failed")
	}
	if !c.IsLocked(court, start, end) {
		t.Fatal("slot should report locked")
	}

	*now = now.Add(31 * time.Second)
	if c.IsLocked(court, start, end) {
		t.Fatal("expired slot should not report locked")
	}
	if c.Len() != 0 {
		t.Fatalf("stale entry should be removed on read, got %d entries", c.Len())
	}

	if !c.Acquire(court, start, end, "holder-b") {
		t.Fatal("expired slot should be acquirable by a new holder")
	}
}

func TestReleaseChecksHolder(t *testing.T) {
	c, _ := newTestCoordinator(30*time.Second, 16)
	court := uuid.New()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	c.Acquire(court, start, end, "holder-a")

	c.Release(court, start, end, "holder-b")
	if !c.IsLocked(court, start, end) {
		t.Fatal("release by a non-owner must not remove the entry")
	}

	c.Release(court, start, end, "holder-a")
	if c.IsLocked(court, start, end) {
		t.Fatal("release by the owner should remove the entry")
	}
}

func TestCapacityEviction(t *testing.T) {
	c, now := newTestCoordinator(30*time.Second, 3)
	court := uuid.New()
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	// Fill to capacity with staggered expiries.
	for i := 0; i < 3; i++ {
		s := base.Add(time.Duration(i) * time.Hour)
		if !c.Acquire(court, s, s.Add(time.Hour), "holder-a") {
			t.Fatalf("acquire %d failed", i)
		}
		*now = now.Add(time.Second)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}

	// One more insert evicts the soonest-expiring entry (the first one).
	s := base.Add(5 * time.Hour)
	if !c.Acquire(court, s, s.Add(time.Hour), "holder-a") {
		t.Fatal("acquire over capacity failed")
	}
	if c.Len() != 3 {
		t.Fatalf("capacity bound violated: %d entries", c.Len())
	}
	if c.IsLocked(court, base, base.Add(time.Hour)) {
		t.Fatal("soonest-expiring entry should have been evicted")
	}
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	c := NewCoordinator(30*time.Second, 128)
	court := uuid.New()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	const n = 50
	var wg sync.WaitGroup
	wins := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			holder := fmt.Sprintf("holder-%d", i)
			if c.Acquire(court, start, end, holder) {
				wins <- holder
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %d: %v", len(winners), winners)
	}
}

func TestSlotKeyDistinguishesIntervals(t *testing.T) {
	court := uuid.New()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	k1 := SlotKey(court, start, start.Add(time.Hour))
	k2 := SlotKey(court, start, start.Add(90*time.Minute))
	k3 := SlotKey(uuid.New(), start, start.Add(time.Hour))

	if k1 == k2 {
		t.Fatal("different intervals must hash differently")
	}
	if k1 == k3 {
		t.Fatal("different courts must hash differently")
	}
	if k1 != SlotKey(court, start, start.Add(time.Hour)) {
		t.Fatal("slot key must be stable")
	}
}
