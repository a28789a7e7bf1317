// Package telemetry builds the OpenTelemetry tracer provider used by the
// patch engine and the HTTP middleware.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the service.name resource attribute of every span.
const ServiceName = "reconcile"

// Config selects the span exporter.
type Config struct {
	// Exporter is "none" or "stdout".
	Exporter string

	// SampleRatio is the fraction of root traces sampled.
	SampleRatio float64

	// Output receives stdout spans. Defaults to io.Discard.
	Output io.Writer

	// Version is the service.version resource attribute.
	Version string
}

// Tracer owns a tracer provider and its exporter.
type Tracer struct {
	provider *sdktrace.TracerProvider
}

// New builds a tracer provider and installs it, with the W3C trace
// context propagator, as the global provider. With the "none" exporter
// spans are sampled but not exported.
func New(cfg Config) (*Tracer, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	switch cfg.Exporter {
	case "", "none":
	case "stdout":
		out := cfg.Output
		if out == nil {
			out = io.Discard
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	return &Tracer{provider: provider}, nil
}

// Provider returns the tracer provider.
func (t *Tracer) Provider() trace.TracerProvider {
	return t.provider
}

// Tracer returns a named tracer of the provider.
func (t *Tracer) Tracer(name string) trace.Tracer {
	return t.provider.Tracer(name)
}

// Shutdown flushes pending spans and stops the exporter.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
