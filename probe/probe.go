// Package probe classifies whether an external job-queue worker is already
// producing the value for a cache key. The two-tier lookup uses the
// classification to render a structured "not ready yet" outcome instead of
// computing inline.
package probe

import (
	"context"

	"github.com/Keksclan/goAcornStash/keys"
)

// Status classifies background work matching one logical-parameter set.
type Status int

const (
	// StatusNotRunning means no matching job exists anywhere in the queue.
	StatusNotRunning Status = iota

	// StatusQueued means a matching job is waiting to be picked up.
	StatusQueued

	// StatusScheduled means a matching job exists with a future run time.
	StatusScheduled

	// StatusExecuting means a worker is running a matching job right now.
	StatusExecuting

	// StatusUnknown means the queue could not be inspected. It is reported by
	// consumers when Classify fails and must never be conflated with
	// StatusNotRunning.
	StatusUnknown
)

// String returns the wire/log name of the status.
func (s Status) String() string {
	switch s {
	case StatusNotRunning:
		return "not_running"
	case StatusQueued:
		return "queued"
	case StatusScheduled:
		return "scheduled"
	case StatusExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

// Probe inspects an external job queue for work matching a cache key.
type Probe interface {
	// Classify reports the status of background work for key. Matching is by
	// the key's canonical rendering embedded in the job payload.
	Classify(ctx context.Context, key keys.Key) (Status, error)
}

// Enqueuer submits new background work to the external queue. Enqueue is a
// distinct administrative operation; the read path never calls it.
type Enqueuer interface {
	Enqueue(ctx context.Context, key keys.Key) error
}
