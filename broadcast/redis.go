package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis publishes ready events over redis pub/sub so subscribers in other
// processes (a websocket hub, an SSE broker) can react. All operations fail
// soft: an unreachable redis costs a log line, never an error to the
// coordinator.
type Redis struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedis creates a redis-backed broadcaster.
func NewRedis(rdb *redis.Client, log zerolog.Logger) *Redis {
	return &Redis{rdb: rdb, log: log}
}

// Publish sends the event to the topic's channel.
func (r *Redis) Publish(ctx context.Context, topic string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Warn().Err(err).Str("topic", topic).Msg("broadcast: marshal event")
		return
	}
	if err := r.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		r.log.Debug().Err(err).Str("topic", topic).Msg("broadcast: publish dropped")
	}
}
