package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Keksclan/goAcornStash/keys"
)

// Job is the payload stored on the queue for one unit of background work.
// Workers are matched against the canonical key rendering, so logically equal
// requests always collide with the same queued job.
type Job struct {
	Key        string    `json:"key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// RedisQueue is a [Probe] and [Enqueuer] over a redis-backed job queue laid
// out as three structures under a shared name:
//
//	<name>:pending    list  jobs waiting for a worker (LPUSH / BRPOP)
//	<name>:scheduled  zset  jobs with a future run time, scored by unix time
//	<name>:executing  list  jobs currently held by a worker
//
// The queue's own scheduling and retry engine is the worker tier's business;
// this side only appends pending jobs and reads for classification.
type RedisQueue struct {
	rdb  *redis.Client
	name string
}

// NewRedisQueue creates a queue client for the named queue.
func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

// Classify reports the status of background work for key. Executing wins over
// queued, queued over scheduled. Any redis error is returned as-is so the
// caller can distinguish "queue says nothing is running" from "queue
// unreachable".
func (q *RedisQueue) Classify(ctx context.Context, key keys.Key) (Status, error) {
	canonical := key.String()

	executing, err := q.matchList(ctx, q.name+":executing", canonical)
	if err != nil {
		return StatusUnknown, fmt.Errorf("probe: executing: %w", err)
	}
	if executing {
		return StatusExecuting, nil
	}

	queued, err := q.matchList(ctx, q.name+":pending", canonical)
	if err != nil {
		return StatusUnknown, fmt.Errorf("probe: pending: %w", err)
	}
	if queued {
		return StatusQueued, nil
	}

	scheduled, err := q.matchZSet(ctx, q.name+":scheduled", canonical)
	if err != nil {
		return StatusUnknown, fmt.Errorf("probe: scheduled: %w", err)
	}
	if scheduled {
		return StatusScheduled, nil
	}

	return StatusNotRunning, nil
}

// Enqueue appends a pending job for key. No dedup is attempted here; callers
// gate on Classify first (see lookup.RequestCompute).
func (q *RedisQueue) Enqueue(ctx context.Context, key keys.Key) error {
	payload, err := json.Marshal(Job{Key: key.String(), EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("probe: marshal job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name+":pending", payload).Err(); err != nil {
		return fmt.Errorf("probe: enqueue: %w", err)
	}
	return nil
}

// matchList reports whether any payload in the list matches the canonical key.
func (q *RedisQueue) matchList(ctx context.Context, listKey, canonical string) (bool, error) {
	payloads, err := q.rdb.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return false, err
	}
	return matchPayloads(payloads, canonical), nil
}

// matchZSet reports whether any member of the zset matches the canonical key.
func (q *RedisQueue) matchZSet(ctx context.Context, zsetKey, canonical string) (bool, error) {
	payloads, err := q.rdb.ZRange(ctx, zsetKey, 0, -1).Result()
	if err != nil {
		return false, err
	}
	return matchPayloads(payloads, canonical), nil
}

func matchPayloads(payloads []string, canonical string) bool {
	for _, p := range payloads {
		var job Job
		if err := json.Unmarshal([]byte(p), &job); err != nil {
			// Foreign payloads on a shared queue are not ours to judge.
			continue
		}
		if job.Key == canonical {
			return true
		}
	}
	return false
}
