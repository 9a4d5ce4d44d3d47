// Package goacornstash caches the results of expensive, slow-to-build
// computations (dashboard digests, ranked prediction lists) so interactive
// read paths stay sub-second while the real work happens in the background.
//
// A [Coordinator] owns one cache namespace. Reads never block on
// computation: a hit returns the cached value, a miss returns the caller's
// default and starts at most one detached background computation for that
// key (single-flight). Completions flow back into the coordinator's own
// serialized loop, so two computations for the same key can never interleave
// their writes, and a failed computation leaves the previous value in place
// until a later read triggers another attempt.
//
//	coord := goacornstash.New("digest", buildDigest,
//		goacornstash.WithTTL(10*time.Minute),
//		goacornstash.WithLogger(log),
//	)
//	defer coord.Close()
//
//	snapshot, fresh := coord.Get(keys.New("digest"), emptyDigest)
//
// For values computed out-of-process by a job-queue worker, see the lookup
// package instead: it shares the same key and store machinery but never
// computes inline.
package goacornstash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Keksclan/goAcornStash/breaker"
	"github.com/Keksclan/goAcornStash/broadcast"
	"github.com/Keksclan/goAcornStash/contextx"
	"github.com/Keksclan/goAcornStash/keys"
	"github.com/Keksclan/goAcornStash/metrics"
	"github.com/Keksclan/goAcornStash/retry"
	"github.com/Keksclan/goAcornStash/store"
)

// Source produces the value for one key of the coordinator's namespace. It
// runs detached from any request: the passed context carries trigger
// metadata (see contextx) but is never cancelled by the coordinator, and a
// source that needs a time bound must impose its own.
type Source[V any] func(ctx context.Context, key keys.Key) (V, error)

// Coordinator serializes all cache state for one namespace through a single
// loop goroutine. All exported methods are safe for concurrent use.
type Coordinator[V any] struct {
	namespace string
	source    Source[V]
	cfg       config

	// Owned exclusively by the run loop.
	store    *store.TTL[V]
	inflight map[string]struct{}

	calls chan func()
	quit  chan struct{}
	once  sync.Once
}

// New creates a Coordinator for namespace and starts its loop. Close must be
// called when the coordinator is no longer needed.
func New[V any](namespace string, source Source[V], opts ...Option) *Coordinator[V] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	s := store.NewTTL[V](cfg.ttl)
	s.SetClock(cfg.clock)

	c := &Coordinator[V]{
		namespace: namespace,
		source:    source,
		cfg:       cfg,
		store:     s,
		inflight:  make(map[string]struct{}),
		calls:     make(chan func()),
		quit:      make(chan struct{}),
	}
	go c.run()

	if cfg.warmupDelay > 0 && len(cfg.warmupKeys) > 0 {
		time.AfterFunc(cfg.warmupDelay, func() {
			for _, k := range cfg.warmupKeys {
				key := k
				c.enqueue(func() { c.trigger(key, contextx.OriginWarmup) })
			}
		})
	}
	return c
}

// run executes queued operations one at a time until Close.
func (c *Coordinator[V]) run() {
	for {
		select {
		case fn := <-c.calls:
			fn()
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the loop and waits for it. It reports false when the
// coordinator is closed.
func (c *Coordinator[V]) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case c.calls <- func() { fn(); close(done) }:
	case <-c.quit:
		return false
	}
	select {
	case <-done:
		return true
	case <-c.quit:
		return false
	}
}

// enqueue hands fn to the loop without waiting. Dropped when closed.
func (c *Coordinator[V]) enqueue(fn func()) {
	select {
	case c.calls <- fn:
	case <-c.quit:
	}
}

// Get returns the cached value for key when fresh, or def otherwise. On a
// miss it starts a background computation (unless one is already in flight)
// and returns immediately; the caller renders def now and picks up the real
// value on a later read or via the broadcaster's ready event.
func (c *Coordinator[V]) Get(key keys.Key, def V) (V, bool) {
	val, fresh := def, false
	c.do(func() {
		if e, ok := c.store.Get(key.String()); ok {
			val, fresh = e.Value, true
			c.cfg.metrics.ObserveRead(c.namespace, metrics.OutcomeHit)
			return
		}
		c.cfg.metrics.ObserveRead(c.namespace, metrics.OutcomeMiss)
		c.trigger(key, contextx.OriginRead)
	})
	return val, fresh
}

// Trigger starts a background computation for key unless the key is fresh or
// already being computed. It returns without waiting.
func (c *Coordinator[V]) Trigger(key keys.Key) {
	c.enqueue(func() { c.trigger(key, contextx.OriginTrigger) })
}

// IsComputing reports whether a background computation for key is in flight,
// for callers that want to avoid duplicate manual refreshes.
func (c *Coordinator[V]) IsComputing(key keys.Key) bool {
	computing := false
	c.do(func() {
		_, computing = c.inflight[key.String()]
	})
	return computing
}

// Invalidate drops the cached value for key. An in-flight computation is not
// cancelled: its result may still land after the invalidation, so a caller
// needing a value strictly newer than this moment should use Refresh and
// watch for the ready event.
func (c *Coordinator[V]) Invalidate(key keys.Key) {
	c.do(func() { c.store.Clear(key.String()) })
}

// InvalidateAll drops every cached value in the namespace.
func (c *Coordinator[V]) InvalidateAll() {
	c.do(func() { c.store.ClearAll() })
}

// Refresh drops the cached value for key and immediately triggers
// recomputation. If a computation is already in flight no second one is
// started.
func (c *Coordinator[V]) Refresh(key keys.Key) {
	c.do(func() {
		c.store.Clear(key.String())
		c.trigger(key, contextx.OriginRefresh)
	})
}

// Close stops the loop. Detached computations already running finish on
// their own but their results are discarded.
func (c *Coordinator[V]) Close() {
	c.once.Do(func() { close(c.quit) })
}

// trigger starts a computation for key. Must run on the loop.
func (c *Coordinator[V]) trigger(key keys.Key, origin contextx.Origin) {
	ck := key.String()

	// Single-flight: one computation per key, no matter how many readers
	// missed.
	if _, running := c.inflight[ck]; running {
		return
	}

	// A result may have landed between the caller's miss and this trigger.
	if _, ok := c.store.Get(ck); ok {
		return
	}

	if c.cfg.limiter != nil && !c.cfg.limiter.Allow(ck) {
		c.cfg.metrics.ComputeSkipped(c.namespace)
		c.cfg.log.Debug().
			Str("key", ck).
			Str("origin", string(origin)).
			Msg("trigger over budget, skipped")
		return
	}

	c.inflight[ck] = struct{}{}
	c.cfg.metrics.ComputeStarted(c.namespace)
	go c.compute(key, origin)
}

// compute is the detached background unit. It never touches coordinator
// state directly; the outcome is delivered back to the loop.
func (c *Coordinator[V]) compute(key keys.Key, origin contextx.Origin) {
	start := time.Now()
	triggerID := contextx.NewTriggerID()

	ctx := contextx.WithTriggerID(context.Background(), triggerID)
	ctx = contextx.WithOrigin(ctx, origin)
	ctx, end := c.cfg.tracing.StartCompute(ctx, c.namespace, key.String(), triggerID)

	val, err := c.runSource(ctx, key)
	end(err)

	c.enqueue(func() { c.complete(key, val, err, triggerID, time.Since(start)) })
}

// runSource invokes the computation source with panic isolation and the
// configured breaker/retry policies applied.
func (c *Coordinator[V]) runSource(ctx context.Context, key keys.Key) (val V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			val = zero
			err = fmt.Errorf("computation panicked: %v", r)
		}
	}()

	if c.cfg.breaker != nil && !c.cfg.breaker.Allow() {
		return val, breaker.ErrOpen
	}

	run := func(ctx context.Context) (V, error) { return c.source(ctx, key) }
	if c.cfg.retry != nil {
		val, err = retry.Do(ctx, *c.cfg.retry, run)
	} else {
		val, err = run(ctx)
	}

	if c.cfg.breaker != nil {
		if err != nil {
			c.cfg.breaker.OnFailure()
		} else {
			c.cfg.breaker.OnSuccess()
		}
	}
	return val, err
}

// complete applies one computation outcome. Must run on the loop.
func (c *Coordinator[V]) complete(key keys.Key, val V, err error, triggerID string, dur time.Duration) {
	ck := key.String()
	delete(c.inflight, ck)

	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, breaker.ErrOpen) {
			result = metrics.ResultSkipped
		}
		c.cfg.metrics.ComputeFinished(c.namespace, result, dur)
		// The store keeps whatever it had; readers see stale or default
		// until the next trigger.
		c.cfg.log.Warn().
			Str("key", ck).
			Str("trigger_id", triggerID).
			Dur("took", dur).
			Err(err).
			Msg("computation failed")
		return
	}

	c.store.Put(ck, val)
	c.cfg.metrics.ComputeFinished(c.namespace, metrics.ResultOK, dur)
	c.cfg.log.Debug().
		Str("key", ck).
		Str("trigger_id", triggerID).
		Dur("took", dur).
		Msg("computation finished")

	if c.cfg.broadcaster != nil {
		ev := broadcast.Event{
			Namespace:  c.namespace,
			Key:        ck,
			ComputedAt: c.cfg.clock(),
		}
		topic := c.cfg.topicFn(key)
		// Publish off-loop; the broadcaster contract is fire-and-forget but
		// a slow implementation must not stall the coordinator.
		go c.cfg.broadcaster.Publish(context.Background(), topic, ev)
	}
}
