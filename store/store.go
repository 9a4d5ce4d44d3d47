// Package store holds cached computation results.
//
// [TTL] is the coordinator-owned map used by the single-flight read path: it
// carries no locking of its own because every access is routed through the
// coordinator's serialized loop. [Hot] is a ristretto-backed tier safe for
// direct concurrent use; the two-tier lookup uses it as its in-process layer.
package store

import "time"

// Entry is one cached value with its validity window.
type Entry[V any] struct {
	Value      V
	ComputedAt time.Time
	ExpiresAt  time.Time
}

// TTL maps rendered cache keys to entries with a fixed time-to-live.
//
// TTL is NOT safe for concurrent use. It is designed to be owned exclusively
// by a single goroutine (the coordinator loop).
type TTL[V any] struct {
	ttl     time.Duration
	entries map[string]Entry[V]
	now     func() time.Time
}

// NewTTL creates a store whose entries expire ttl after being put.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		entries: make(map[string]Entry[V]),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Intended for tests.
func (s *TTL[V]) SetClock(now func() time.Time) { s.now = now }

// Put stores value under key, wholesale replacing any prior entry.
func (s *TTL[V]) Put(key string, value V) {
	now := s.now()
	s.entries[key] = Entry[V]{
		Value:      value,
		ComputedAt: now,
		ExpiresAt:  now.Add(s.ttl),
	}
}

// Get returns the entry for key if it has not expired. An expired entry is a
// miss; it stays physically stored until overwritten or cleared.
func (s *TTL[V]) Get(key string) (Entry[V], bool) {
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.ExpiresAt) {
		return Entry[V]{}, false
	}
	return e, true
}

// Clear removes the entry for key, if any.
func (s *TTL[V]) Clear(key string) {
	delete(s.entries, key)
}

// ClearAll removes every entry.
func (s *TTL[V]) ClearAll() {
	clear(s.entries)
}

// Len reports the number of physically stored entries, expired ones included.
func (s *TTL[V]) Len() int { return len(s.entries) }
