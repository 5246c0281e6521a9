// Package observability wires OpenTelemetry tracing and Prometheus metrics.
package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Config selects which signals are exported.
type Config struct {
	ServiceName    string
	Version        string
	TracingEnabled bool
	MetricsEnabled bool
	// TraceOutput receives stdout spans; defaults to os.Stdout
	TraceOutput io.Writer
}

// Provider owns the tracer and meter providers for the process.
type Provider struct {
	registry       *prometheus.Registry
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	shutdown       []func(context.Context) error
}

// Setup builds the providers. Disabled signals use no-op providers so
// callers never need to check.
func Setup(cfg Config) (*Provider, error) {
	p := &Provider{
		registry:       prometheus.NewRegistry(),
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	if cfg.TracingEnabled {
		out := cfg.TraceOutput
		if out == nil {
			out = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		p.tracerProvider = tp
		p.shutdown = append(p.shutdown, tp.Shutdown)
	}

	if cfg.MetricsEnabled {
		p.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exp, err := otelprom.New(otelprom.WithRegisterer(p.registry))
		if err != nil {
			return nil, err
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exp),
			sdkmetric.WithResource(res),
		)
		p.meterProvider = mp
		p.shutdown = append(p.shutdown, mp.Shutdown)
	}

	return p, nil
}

// Nop returns a provider that records nothing.
func Nop() *Provider {
	return &Provider{
		registry:       prometheus.NewRegistry(),
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

// Handler serves the Prometheus scrape endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Recorder returns an operation recorder for a component.
func (p *Provider) Recorder(component string) *Recorder {
	return NewRecorder(p.tracerProvider, p.meterProvider, component)
}

// Shutdown flushes exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}
