// Package tracing provides OpenTelemetry span helpers for the
// interpreter: one span per turn, child spans per step entered.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/csml-lang/csml-go/internal/interp"

// InitNoop wires a no-op trace provider as the global default. The
// CLI's run and repl commands always install it; the telemetry config
// section is not consulted.
func InitNoop() {
	otel.SetTracerProvider(noop.NewTracerProvider())
}

// InitSDK wires an in-process SDK trace provider with the given
// span processor (e.g. an OTLP exporter's batch processor), for hosts
// that export spans. The CLI does not call it.
func InitSDK(sp sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sp))
	otel.SetTracerProvider(tp)
	return tp
}

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartTurnSpan starts the span covering one full interpreter turn.
func StartTurnSpan(ctx context.Context, flow, step string) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "turn.run")
	span.SetAttributes(
		attribute.String("turn.flow", flow),
		attribute.String("turn.step", step),
	)
	return ctx, span
}

// EndTurnSpan ends the turn span with the resulting next-state kind.
func EndTurnSpan(span trace.Span, nextKind string, err error) {
	span.SetAttributes(attribute.String("turn.next", nextKind))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// StartStepSpan starts a child span for one step/block entry,
// including on a resumed hold.
func StartStepSpan(ctx context.Context, flow, step string, resuming bool) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "step."+step)
	span.SetAttributes(
		attribute.String("step.flow", flow),
		attribute.String("step.name", step),
		attribute.Bool("step.resuming", resuming),
	)
	return ctx, span
}

// EndStepSpan ends a step span.
func EndStepSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
