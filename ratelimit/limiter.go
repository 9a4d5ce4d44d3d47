// Package ratelimit provides token-bucket gates backed by
// golang.org/x/time/rate for bounding how often background recomputation may
// be triggered, globally or per cache key.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps a single token-bucket limiter that decides whether one more
// trigger may proceed.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter creates a Limiter that permits rps triggers per second with the
// given burst size.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether a single trigger may proceed.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// Keyed maintains an independent token bucket per cache key, so a storm of
// triggers for one key cannot starve recomputation of the others.
type Keyed struct {
	rps   float64
	burst int

	mu   sync.Mutex
	lims map[string]*rate.Limiter
}

// NewKeyed creates a Keyed limiter. Each key gets its own bucket permitting
// rps triggers per second with the given burst size.
func NewKeyed(rps float64, burst int) *Keyed {
	return &Keyed{
		rps:   rps,
		burst: burst,
		lims:  make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a trigger for key may proceed.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	lim, ok := k.lims[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(k.rps), k.burst)
		k.lims[key] = lim
	}
	k.mu.Unlock()
	return lim.Allow()
}

// Forget drops the bucket for key. The next Allow for that key starts with a
// full burst again.
func (k *Keyed) Forget(key string) {
	k.mu.Lock()
	delete(k.lims, key)
	k.mu.Unlock()
}
