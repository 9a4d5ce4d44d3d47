// Package lookup implements the read path for values that are computed
// out-of-process: a worker on an external job queue produces the value and
// persists it to a durable store, and this side only ever reads.
//
// The protocol is hot tier → persisted tier → structured unavailable. A miss
// in both tiers never computes inline; instead the job-status probe
// classifies whether matching work is already underway, and the caller
// renders a waiting or empty state from that classification. New work is
// requested only through the explicit [TwoTier.RequestCompute] operation.
package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Keksclan/goAcornStash/keys"
	"github.com/Keksclan/goAcornStash/metrics"
	"github.com/Keksclan/goAcornStash/probe"
	"github.com/Keksclan/goAcornStash/store"
)

// ErrNoQueue is returned by RequestCompute when no enqueuer was configured.
var ErrNoQueue = errors.New("lookup: no job queue configured")

// Tier names where a value was found.
type Tier int

const (
	TierNone Tier = iota
	TierHot
	TierPersisted
)

func (t Tier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierPersisted:
		return "persisted"
	default:
		return "none"
	}
}

// PersistedStore is the durable secondary store a job-queue worker writes
// materialized results into.
type PersistedStore[V any] interface {
	// Lookup returns the materialized result for the key's logical
	// parameters, if one exists.
	Lookup(ctx context.Context, key keys.Key) (V, bool, error)

	// TimestampOf returns when the materialized result was computed.
	TimestampOf(ctx context.Context, key keys.Key) (time.Time, bool, error)
}

// Result is the outcome of one two-tier read. Exactly one of these shapes
// holds:
//
//   - Available == true: Value is usable, Tier says which tier served it.
//   - Available == false, ProbeErr == nil: no data yet; JobState classifies
//     the matching background work (not_running, queued, scheduled, executing).
//   - Available == false, ProbeErr != nil: the queue could not be inspected;
//     JobState is StatusUnknown, never a silent not_running.
type Result[V any] struct {
	Value     V
	Available bool
	Tier      Tier
	JobState  probe.Status
	ProbeErr  error
}

// Options carries the optional collaborators of a TwoTier.
type Options struct {
	// HotTTL bounds how long a value promoted from the persisted tier stays
	// in the hot tier. Defaults to 30 seconds.
	HotTTL time.Duration

	// Log receives fail-soft diagnostics. Defaults to a no-op logger.
	Log zerolog.Logger

	// Metrics, when set, counts read outcomes.
	Metrics *metrics.Cache

	// Queue, when set, enables RequestCompute.
	Queue probe.Enqueuer
}

// TwoTier is the hot-then-persisted read path for one value shape.
type TwoTier[V any] struct {
	hot       *store.Hot[V]
	persisted PersistedStore[V]
	probe     probe.Probe
	opts      Options
}

// NewTwoTier assembles a read path from its collaborators.
func NewTwoTier[V any](hot *store.Hot[V], persisted PersistedStore[V], pr probe.Probe, opts Options) *TwoTier[V] {
	if opts.HotTTL <= 0 {
		opts.HotTTL = 30 * time.Second
	}
	return &TwoTier[V]{hot: hot, persisted: persisted, probe: pr, opts: opts}
}

// Get reads the value for key without ever computing it inline.
func (l *TwoTier[V]) Get(ctx context.Context, key keys.Key) Result[V] {
	canonical := key.String()

	// 1. Hot tier.
	if v, ok := l.hot.Get(canonical); ok {
		l.opts.Metrics.ObserveRead(key.Namespace(), metrics.OutcomeHit)
		return Result[V]{Value: v, Available: true, Tier: TierHot}
	}

	// 2. Persisted tier. Store errors are fail-soft: a broken secondary
	// store reads as a miss, the probe still classifies.
	v, ok, err := l.persisted.Lookup(ctx, key)
	if err != nil {
		l.opts.Log.Warn().Err(err).Str("key", canonical).Msg("lookup: persisted store unavailable")
	} else if ok {
		l.hot.Set(canonical, v, l.opts.HotTTL)
		l.opts.Metrics.ObserveRead(key.Namespace(), metrics.OutcomePersisted)
		return Result[V]{Value: v, Available: true, Tier: TierPersisted}
	}

	// 3. No data in either tier: classify, never compute.
	l.opts.Metrics.ObserveRead(key.Namespace(), metrics.OutcomeMiss)
	st, perr := l.probe.Classify(ctx, key)
	if perr != nil {
		l.opts.Log.Warn().Err(perr).Str("key", canonical).Msg("lookup: probe unavailable")
		return Result[V]{JobState: probe.StatusUnknown, ProbeErr: perr}
	}
	return Result[V]{JobState: st}
}

// Invalidate drops the hot-tier entry for key. The persisted tier belongs to
// the worker that wrote it and is left untouched.
func (l *TwoTier[V]) Invalidate(key keys.Key) {
	l.hot.Clear(key.String())
}

// RequestCompute asks the external queue for new background work on key. It
// enqueues only when the probe reports no matching work anywhere, and reports
// whether a job was submitted.
func (l *TwoTier[V]) RequestCompute(ctx context.Context, key keys.Key) (bool, error) {
	if l.opts.Queue == nil {
		return false, ErrNoQueue
	}
	st, err := l.probe.Classify(ctx, key)
	if err != nil {
		return false, err
	}
	if st != probe.StatusNotRunning {
		// Matching work already underway; submitting again would duplicate it.
		return false, nil
	}
	if err := l.opts.Queue.Enqueue(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}
