package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/pulse"

// Tracer provides OpenTelemetry tracing for a Relay.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new pulse tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartPublishSpan starts a new span for a publish call.
func (t *Tracer) StartPublishSpan(ctx context.Context, eventType string, sticky bool) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pulse.publish",
		trace.WithAttributes(
			attribute.String("pulse.event_type", eventType),
			attribute.Bool("pulse.sticky", sticky),
		),
	)
}

// StartDeliverSpan starts a new span for a handler invocation.
func (t *Tracer) StartDeliverSpan(ctx context.Context, eventType, subscriptionID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pulse.deliver",
		trace.WithAttributes(
			attribute.String("pulse.event_type", eventType),
			attribute.String("pulse.subscription_id", subscriptionID),
		),
	)
}

// End ends a span, recording err as an error attribute when non-nil.
func (t *Tracer) End(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("pulse.error", err.Error()))
	}
	span.End()
}
