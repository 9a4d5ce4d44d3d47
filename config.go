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

// config holds the internal configuration assembled via functional options.
type config struct {
	ttl   time.Duration
	clock func() time.Time

	log     zerolog.Logger
	metrics *metrics.Cache
	tracing *tracing.Config

	broadcaster broadcast.Broadcaster
	topicFn     func(keys.Key) string

	breaker *breaker.Breaker
	retry   *retry.Config
	limiter *ratelimit.Keyed

	warmupDelay time.Duration
	warmupKeys  []keys.Key
}

// defaultConfig returns the configuration used before options are applied.
func defaultConfig() config {
	return config{
		ttl:   DefaultTTL,
		clock: time.Now,
		log:   zerolog.Nop(),
		topicFn: func(k keys.Key) string {
			return broadcast.Topic(k.Namespace())
		},
	}
}
