// Package tracing provides optional OpenTelemetry spans around background
// computations. It is entirely inert until a [Config] is wired in via the
// coordinator's WithTracing option; a nil *Config is a no-op everywhere.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config holds the OpenTelemetry configuration used for computation spans.
type Config struct {
	// TracerProvider supplies the Tracer used to create spans. When nil the
	// global otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider
}

// tracer returns a configured [trace.Tracer].
func (c *Config) tracer() trace.Tracer {
	if c == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer("github.com/Keksclan/goAcornStash/tracing")
}

// StartCompute opens a span for one background computation. The returned
// context carries the span; call the returned end func with the computation's
// final error.
func (c *Config) StartCompute(ctx context.Context, namespace, key, triggerID string) (context.Context, func(error)) {
	ctx, span := c.tracer().Start(ctx, "cache.compute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cache.namespace", namespace),
			attribute.String("cache.key", key),
			attribute.String("cache.trigger_id", triggerID),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
