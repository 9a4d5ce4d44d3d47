package contextx

import "context"

// Origin names the operation that started a background computation.
type Origin string

const (
	OriginRead    Origin = "read"
	OriginTrigger Origin = "trigger"
	OriginRefresh Origin = "refresh"
	OriginWarmup  Origin = "warmup"
)

// WithOrigin returns a derived context that carries the given trigger origin.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, originKey, o)
}

// OriginFromContext extracts the trigger origin stored in ctx.
// The boolean return value indicates whether an origin was present.
func OriginFromContext(ctx context.Context) (Origin, bool) {
	o, ok := ctx.Value(originKey).(Origin)
	return o, ok
}
