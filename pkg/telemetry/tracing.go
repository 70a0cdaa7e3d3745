package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the instrumentation name used when none is given.
const DefaultTracerName = "github.com/vango-dev/fiber"

// Span names.
const (
	SpanRender  = "fiber.render"
	SpanCommit  = "fiber.commit"
	SpanPassive = "fiber.passive"
)

// Tracer starts spans for reconciler phases.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer resolves a tracer from the global OpenTelemetry provider.
// Configure the provider with otel.SetTracerProvider before calling it.
func NewTracer(name string) *Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return &Tracer{tracer: otel.Tracer(name)}
}

// NewTracerFrom wraps an existing trace.Tracer.
func NewTracerFrom(t trace.Tracer) *Tracer {
	return &Tracer{tracer: t}
}

// Start begins a span for one phase of work on a root.
func (t *Tracer) Start(ctx context.Context, name, rootID, lane string) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("fiber.root", rootID),
			attribute.String("fiber.lane", lane),
		),
	)
}

// End finishes span, recording err when it is non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
