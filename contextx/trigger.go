// Package contextx carries per-trigger metadata through the contexts of
// detached background computations, so that log lines emitted inside a
// computation can be correlated with the read or refresh that started it.
package contextx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// NewTriggerID returns a fresh random identifier for one background
// computation.
func NewTriggerID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "trg-unknown"
	}
	return "trg-" + hex.EncodeToString(b[:])
}

// WithTriggerID returns a derived context that carries the given trigger ID.
func WithTriggerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, triggerIDKey, id)
}

// TriggerIDFromContext extracts the trigger ID stored in ctx.
// It returns an empty string when no trigger ID is present.
func TriggerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(triggerIDKey).(string)
	return id
}
