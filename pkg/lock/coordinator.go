// Package lock implements the process-local advisory lock used to
// short-circuit obviously conflicting booking requests before they reach
// the database. Entries are keyed by an exact (court, interval) hash and
// expire after a fixed TTL, so a restarted process simply starts empty.
// The durable exclusion inside the booking transaction is the actual
// correctness mechanism; this map only reduces contention on it.
package lock

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long an acquired slot hint stays live without renewal.
	DefaultTTL = 30 * time.Second
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 4096
)

type entry struct {
	holderID  string
	expiresAt time.Time
}

// Coordinator is a capacity-bounded, TTL-indexed concurrent map of slot hints.
type Coordinator struct {
	mu       sync.Mutex
	entries  map[uint64]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewCoordinator creates a Coordinator with the given TTL and capacity.
// Zero values fall back to the defaults.
func NewCoordinator(ttl time.Duration, capacity int) *Coordinator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Coordinator{
		entries:  make(map[uint64]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// SlotKey hashes a (court, interval) triple into the map key. Exact-interval
// only: partially overlapping intervals hash to different keys, which is fine
// because the coordinator is a fast path, not a conflict detector.
func SlotKey(resourceID uuid.UUID, start, end time.Time) uint64 {
	h := fnv.New64a()
	h.Write(resourceID[:])
	var buf [16]byte
	putInt64(buf[:8], start.UTC().Unix())
	putInt64(buf[8:], end.UTC().Unix())
	h.Write(buf[:])
	return h.Sum64()
}

func putInt64(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Acquire inserts or renews the hint for the slot. It returns false when a
// different holder owns a live entry for the same key.
func (c *Coordinator) Acquire(resourceID uuid.UUID, start, end time.Time, holderID string) bool {
	key := SlotKey(resourceID, start, end)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.expiresAt.After(now) && e.holderID != holderID {
		return false
	}

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictLocked(now)
	}

	c.entries[key] = entry{holderID: holderID, expiresAt: now.Add(c.ttl)}
	return true
}

// Release removes the hint, but only if holderID owns it. A holder may never
// release another holder's lock.
func (c *Coordinator) Release(resourceID uuid.UUID, start, end time.Time, holderID string) {
	key := SlotKey(resourceID, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.holderID == holderID {
		delete(c.entries, key)
	}
}

// IsLocked reports whether a live entry exists for the slot, lazily expiring
// a stale one on read.
func (c *Coordinator) IsLocked(resourceID uuid.UUID, start, end time.Time) bool {
	key := SlotKey(resourceID, start, end)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if !e.expiresAt.After(now) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Len returns the current number of entries, expired ones included.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries, then the soonest-expiring live entry if
// the map is still at capacity. Caller must hold c.mu.
func (c *Coordinator) evictLocked(now time.Time) {
	for k, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	var (
		oldestKey uint64
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.expiresAt.Before(oldest) {
			oldestKey, oldest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
