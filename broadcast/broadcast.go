// Package broadcast delivers "data ready" notifications to interested
// subscribers after a background computation lands a fresh value.
//
// Delivery is fire-and-forget: the coordinator publishes and moves on, and no
// implementation may block it or guarantee delivery. Three implementations
// are provided: [Nop], the redis pub/sub [Redis] broadcaster, and the
// in-process gRPC streaming [Hub].
package broadcast

import (
	"context"
	"time"
)

// Event announces that a fresh value for a cache key is available.
type Event struct {
	Namespace  string    `json:"namespace"`
	Key        string    `json:"key"`
	ComputedAt time.Time `json:"computed_at"`
}

// Broadcaster publishes ready events. Publish must not block and must not
// fail loudly; implementations swallow and log their own errors.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, ev Event)
}

// Topic returns the conventional ready-event topic for a cache namespace.
func Topic(namespace string) string {
	return "cache.ready." + namespace
}

// Nop is a Broadcaster that discards every event.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(context.Context, string, Event) {}
