package broadcast_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Keksclan/goAcornStash/broadcast"
)

func TestRedis_PublishReachesSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sub := rdb.Subscribe(t.Context(), "cache.ready.digest")
	t.Cleanup(func() { _ = sub.Close() })
	// Wait for the subscription to be confirmed.
	if _, err := sub.Receive(t.Context()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	b := broadcast.NewRedis(rdb, zerolog.Nop())
	b.Publish(t.Context(), "cache.ready.digest", broadcast.Event{
		Namespace:  "digest",
		Key:        "digest",
		ComputedAt: time.Unix(1_700_000_000, 0).UTC(),
	})

	select {
	case msg := <-sub.Channel():
		var ev broadcast.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Key != "digest" {
			t.Fatalf("key = %q", ev.Key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestRedis_PublishFailsSoft(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	// Must not panic or return anything; errors are logged and dropped.
	b := broadcast.NewRedis(rdb, zerolog.Nop())
	b.Publish(t.Context(), "cache.ready.digest", broadcast.Event{Namespace: "digest", Key: "digest"})
}
