// Package metrics exposes Prometheus instrumentation for the cache
// coordinator and two-tier lookup.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache holds the collectors a coordinator (or lookup) reports into. All
// methods are safe for concurrent use and safe on a nil receiver, so callers
// can leave metrics unconfigured.
type Cache struct {
	reads      *prometheus.CounterVec
	computes   *prometheus.CounterVec
	inFlight   *prometheus.GaugeVec
	computeDur *prometheus.HistogramVec
}

// NewCache creates the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer for the default registry.
func NewCache(reg prometheus.Registerer) *Cache {
	c := &Cache{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "acornstash",
			Name:      "reads_total",
			Help:      "Cache reads by namespace and outcome (hit, miss, persisted).",
		}, []string{"namespace", "outcome"}),
		computes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "acornstash",
			Name:      "computes_total",
			Help:      "Background computations by namespace and result (ok, error, skipped).",
		}, []string{"namespace", "result"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "acornstash",
			Name:      "computations_in_flight",
			Help:      "Background computations currently running per namespace.",
		}, []string{"namespace"}),
		computeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "acornstash",
			Name:      "compute_duration_seconds",
			Help:      "Wall time of background computations.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
		}, []string{"namespace"}),
	}
	reg.MustRegister(c.reads, c.computes, c.inFlight, c.computeDur)
	return c
}

// Read outcomes.
const (
	OutcomeHit       = "hit"
	OutcomeMiss      = "miss"
	OutcomePersisted = "persisted"
)

// Compute results.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// ObserveRead records one read with the given outcome.
func (c *Cache) ObserveRead(namespace, outcome string) {
	if c == nil {
		return
	}
	c.reads.WithLabelValues(namespace, outcome).Inc()
}

// ComputeStarted marks one background computation as running.
func (c *Cache) ComputeStarted(namespace string) {
	if c == nil {
		return
	}
	c.inFlight.WithLabelValues(namespace).Inc()
}

// ComputeFinished records the end of a background computation.
func (c *Cache) ComputeFinished(namespace, result string, dur time.Duration) {
	if c == nil {
		return
	}
	c.inFlight.WithLabelValues(namespace).Dec()
	c.computes.WithLabelValues(namespace, result).Inc()
	c.computeDur.WithLabelValues(namespace).Observe(dur.Seconds())
}

// ComputeSkipped records a trigger that was refused before starting (rate
// limit or open breaker).
func (c *Cache) ComputeSkipped(namespace string) {
	if c == nil {
		return
	}
	c.computes.WithLabelValues(namespace, ResultSkipped).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics from the
// default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
