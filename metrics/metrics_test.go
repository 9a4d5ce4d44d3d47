package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCache_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCache(reg)

	c.ObserveRead("digest", OutcomeHit)
	c.ObserveRead("digest", OutcomeMiss)
	c.ObserveRead("digest", OutcomeMiss)

	if got := testutil.ToFloat64(c.reads.WithLabelValues("digest", OutcomeMiss)); got != 2 {
		t.Fatalf("miss count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.reads.WithLabelValues("digest", OutcomeHit)); got != 1 {
		t.Fatalf("hit count = %v, want 1", got)
	}
}

func TestCache_InFlightGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCache(reg)

	c.ComputeStarted("digest")
	if got := testutil.ToFloat64(c.inFlight.WithLabelValues("digest")); got != 1 {
		t.Fatalf("in-flight = %v, want 1", got)
	}

	c.ComputeFinished("digest", ResultOK, 120*time.Millisecond)
	if got := testutil.ToFloat64(c.inFlight.WithLabelValues("digest")); got != 0 {
		t.Fatalf("in-flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.computes.WithLabelValues("digest", ResultOK)); got != 1 {
		t.Fatalf("ok computes = %v, want 1", got)
	}
}

func TestCache_NilReceiverSafe(t *testing.T) {
	var c *Cache
	c.ObserveRead("digest", OutcomeHit)
	c.ComputeStarted("digest")
	c.ComputeFinished("digest", ResultError, time.Second)
	c.ComputeSkipped("digest")
}
