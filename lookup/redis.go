package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Keksclan/goAcornStash/keys"
)

// envelope is the stored form of one materialized result.
type envelope[V any] struct {
	ComputedAt time.Time `json:"computed_at"`
	Value      V         `json:"value"`
}

// RedisStore is a [PersistedStore] over redis. Workers call [RedisStore.Put]
// after finishing a job; the read path only calls Lookup and TimestampOf.
type RedisStore[V any] struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore creates a store whose entries live under "<prefix>:<key>".
func NewRedisStore[V any](rdb *redis.Client, prefix string) *RedisStore[V] {
	return &RedisStore[V]{rdb: rdb, prefix: prefix}
}

func (s *RedisStore[V]) storageKey(key keys.Key) string {
	return s.prefix + ":" + key.String()
}

// Lookup returns the materialized result for key, if one exists.
func (s *RedisStore[V]) Lookup(ctx context.Context, key keys.Key) (V, bool, error) {
	var zero V
	env, ok, err := s.load(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	return env.Value, true, nil
}

// TimestampOf returns when the materialized result for key was computed.
func (s *RedisStore[V]) TimestampOf(ctx context.Context, key keys.Key) (time.Time, bool, error) {
	env, ok, err := s.load(ctx, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return env.ComputedAt, true, nil
}

// Put materializes a computed value for key. ttl of zero stores it without
// expiry; workers typically pass the recompute interval so abandoned keys
// age out on their own.
func (s *RedisStore[V]) Put(ctx context.Context, key keys.Key, value V, computedAt time.Time, ttl time.Duration) error {
	payload, err := json.Marshal(envelope[V]{ComputedAt: computedAt.UTC(), Value: value})
	if err != nil {
		return fmt.Errorf("lookup: marshal result: %w", err)
	}
	if err := s.rdb.Set(ctx, s.storageKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("lookup: put result: %w", err)
	}
	return nil
}

func (s *RedisStore[V]) load(ctx context.Context, key keys.Key) (envelope[V], bool, error) {
	var env envelope[V]
	raw, err := s.rdb.Get(ctx, s.storageKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return env, false, nil
		}
		return env, false, fmt.Errorf("lookup: load result: %w", err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, false, fmt.Errorf("lookup: decode result: %w", err)
	}
	return env, true, nil
}
