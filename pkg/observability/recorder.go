package observability

import (
	"context"
	"strings"
	"time"

	apperrors "influencer-platform/backend/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "influencer-platform/backend"

// Recorder traces and counts data layer operations.
type Recorder struct {
	component string
	tracer    trace.Tracer
	calls     metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewRecorder creates a recorder. Instrument creation errors fall back to
// no-op instruments.
func NewRecorder(tp trace.TracerProvider, mp metric.MeterProvider, component string) *Recorder {
	meter := mp.Meter(instrumentationName)
	noopMeter := metricnoop.NewMeterProvider().Meter(instrumentationName)

	calls, err := meter.Int64Counter("influencer.operations",
		metric.WithDescription("Data layer operations by outcome"))
	if err != nil {
		calls, _ = noopMeter.Int64Counter("influencer.operations")
	}
	duration, err := meter.Float64Histogram("influencer.operation.duration",
		metric.WithDescription("Data layer operation latency"),
		metric.WithUnit("s"))
	if err != nil {
		duration, _ = noopMeter.Float64Histogram("influencer.operation.duration")
	}

	return &Recorder{
		component: component,
		tracer:    tp.Tracer(instrumentationName),
		calls:     calls,
		duration:  duration,
	}
}

// NopRecorder records nothing.
func NopRecorder() *Recorder {
	return NewRecorder(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider(), "")
}

// Start opens a span for op and returns a func that ends it, recording the
// outcome of err.
func (r *Recorder) Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	name := op
	if r.component != "" {
		name = r.component + "." + op
	}
	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := Outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()

		set := metric.WithAttributes(
			attribute.String("component", r.component),
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		)
		r.calls.Add(ctx, 1, set)
		r.duration.Record(ctx, time.Since(start).Seconds(), set)
	}
}

// Outcome labels an error by category: "ok", "not_found", "conflict" and so on.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperrors.KindOf(err)))
}
