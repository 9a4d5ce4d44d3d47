package store

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Hot is an in-process cache tier backed by ristretto. Unlike [TTL] it is
// safe for concurrent use and is meant for read paths that are not serialized
// through a coordinator, such as the two-tier lookup.
type Hot[V any] struct {
	rc *ristretto.Cache[string, V]
}

// NewHot creates a Hot tier. maxEntries controls the maximum number of
// entries the cache can hold (each entry has a cost of 1).
func NewHot[V any](maxEntries int64) (*Hot[V], error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Hot[V]{rc: rc}, nil
}

// Get retrieves a value by key. The boolean indicates a hit.
func (h *Hot[V]) Get(key string) (V, bool) {
	return h.rc.Get(key)
}

// Set stores a value under key with the given TTL. A zero TTL means the
// entry has no automatic expiration. The write is waited on so a subsequent
// Get observes it.
func (h *Hot[V]) Set(key string, value V, ttl time.Duration) {
	h.rc.SetWithTTL(key, value, 1, ttl)
	h.rc.Wait()
}

// Clear removes the entry for key, if any.
func (h *Hot[V]) Clear(key string) {
	h.rc.Del(key)
}

// Close releases the cache's internal resources.
func (h *Hot[V]) Close() {
	h.rc.Close()
}
