package tracing

import (
	"context"
	"errors"
	"fmt"

	"collectionbuilder/querybuilder/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName identifies spans created by this module.
const instrumentationName = "collectionbuilder/querybuilder"

// noopTracer backs nil and disabled tracers.
var noopTracer = noop.NewTracerProvider().Tracer(instrumentationName)

// Tracer wraps an OpenTelemetry tracer. A nil *Tracer is valid and creates
// noop spans.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// New creates a tracer from configuration. When tracing is disabled a noop
// tracer is returned. Otherwise spans are batched to an OTLP gRPC collector;
// the connection is made lazily, so New succeeds without a running collector.
//
// The tracer must be shut down to flush pending spans:
//
//	defer tracer.Shutdown(context.Background())
func New(ctx context.Context, cfg config.TracingConfig) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{tracer: noopTracer}, nil
	}

	sampler, err := samplerFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	return newTracer(cfg.ServiceName, sampler, sdktrace.WithBatcher(exporter)), nil
}

// NewWithExporter creates an always-sampling tracer that exports each span
// synchronously as it ends.
func NewWithExporter(serviceName string, exporter sdktrace.SpanExporter) (*Tracer, error) {
	if exporter == nil {
		return nil, errors.New("tracing: nil exporter")
	}
	return newTracer(serviceName, sdktrace.AlwaysSample(), sdktrace.WithSyncer(exporter)), nil
}

func newTracer(serviceName string, sampler sdktrace.Sampler, export sdktrace.TracerProviderOption) *Tracer {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	provider := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	return &Tracer{
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		enabled:  true,
	}
}

// Start creates a span linked to any span already in ctx. The returned span
// must be ended:
//
//	ctx, span := tracer.Start(ctx, "session.apply")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return noopTracer.Start(ctx, name, opts...)
	}
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled reports whether spans are recorded.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// TraceID returns the trace ID from the context, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SetStatus sets the span status from err and records the error, if any.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
