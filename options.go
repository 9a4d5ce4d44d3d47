package goacornstash

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Keksclan/goAcornStash/breaker"
	"github.com/Keksclan/goAcornStash/broadcast"
	"github.com/Keksclan/goAcornStash/keys"
	"github.com/Keksclan/goAcornStash/metrics"
	"github.com/Keksclan/goAcornStash/ratelimit"
	"github.com/Keksclan/goAcornStash/retry"
	"github.com/Keksclan/goAcornStash/tracing"
)

// Option configures a Coordinator.
type Option func(*config)

// WithTTL sets how long a computed value stays fresh before a read triggers
// recomputation.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithLogger routes the coordinator's diagnostics to log. Without it, all
// logging is discarded.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithMetrics reports read outcomes and computation lifecycle into m.
func WithMetrics(m *metrics.Cache) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTracing opens an OpenTelemetry span around every background
// computation.
func WithTracing(cfg *tracing.Config) Option {
	return func(c *config) {
		c.tracing = cfg
	}
}

// WithBroadcaster publishes a ready event through b after every successful
// computation. Topics default to broadcast.Topic(namespace); see
// WithTopicFunc.
func WithBroadcaster(b broadcast.Broadcaster) Option {
	return func(c *config) {
		c.broadcaster = b
	}
}

// WithTopicFunc overrides the topic a key's ready events are published on.
func WithTopicFunc(fn func(keys.Key) string) Option {
	return func(c *config) {
		c.topicFn = fn
	}
}

// WithBreaker trips computation for the whole namespace after repeated
// consecutive failures, instead of hammering a broken source on every miss.
func WithBreaker(cfg breaker.Config) Option {
	return func(c *config) {
		c.breaker = breaker.New(cfg)
	}
}

// WithRetry retries a failed computation source inside a single background
// attempt, with exponential backoff.
func WithRetry(cfg retry.Config) Option {
	return func(c *config) {
		c.retry = &cfg
	}
}

// WithTriggerLimit bounds how often recomputation may be triggered per key.
// Triggers beyond the budget are skipped and retried on a later read.
func WithTriggerLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.limiter = ratelimit.NewKeyed(rps, burst)
	}
}

// WithWarmup schedules a first trigger for the given keys once delay has
// elapsed after construction, so the first heavy computation does not compete
// with process startup.
func WithWarmup(delay time.Duration, warmupKeys ...keys.Key) Option {
	return func(c *config) {
		c.warmupDelay = delay
		c.warmupKeys = warmupKeys
	}
}

// WithClock replaces the coordinator's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.clock = now
	}
}
