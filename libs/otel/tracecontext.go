package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Carried is the W3C trace context persisted next to an outbox row so the publisher
// can continue the trace of the request that produced it.
type Carried struct {
	Traceparent string
	Tracestate  string
}

func Capture(ctx context.Context) Carried {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return Carried{Traceparent: carrier["traceparent"], Tracestate: carrier["tracestate"]}
}

func Restore(ctx context.Context, c Carried) context.Context {
	if c.Traceparent == "" && c.Tracestate == "" {
		return ctx
	}
	carrier := propagation.MapCarrier{
		"traceparent": c.Traceparent,
		"tracestate":  c.Tracestate,
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
