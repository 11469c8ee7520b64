package tracing

import (
	"context"
	"errors"
	"testing"

	"collectionbuilder/querybuilder/pkg/config"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// TestNew tests the creation of a new tracer
func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{
			name:   "disabled tracing",
			config: config.TracingConfig{Enabled: false},
		},
		{
			name: "enabled with never sampler",
			config: config.TracingConfig{
				Enabled:     true,
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				Insecure:    true,
				Sampler:     SamplerNever,
			},
			wantEnabled: true,
		},
		{
			name: "invalid sampler",
			config: config.TracingConfig{
				Enabled:  true,
				Endpoint: "localhost:4317",
				Sampler:  "sometimes",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer tracer.Shutdown(context.Background())

			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
			_, span := tracer.Start(context.Background(), "test")
			span.End()
		})
	}
}

// TestTracer_RecordsSpans tests span export, nesting and status
func TestTracer_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter("test-service", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, parent := tracer.Start(context.Background(), "session.apply",
		trace.WithAttributes(QueryAttributes("dante", "negate")...))
	if TraceID(ctx) == "" {
		t.Error("expected a trace id in the span context")
	}
	_, child := tracer.Start(ctx, "store.save")
	SetStatus(child, errors.New("disk full"))
	child.End()
	SetStatus(parent, nil)
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	childSpan, parentSpan := spans[0], spans[1]
	if childSpan.Parent.SpanID() != parentSpan.SpanContext.SpanID() {
		t.Error("child span is not linked to its parent")
	}
	if childSpan.Status.Code != codes.Error || len(childSpan.Events) == 0 {
		t.Errorf("expected error status with a recorded event, got %+v", childSpan.Status)
	}
	if parentSpan.Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %+v", parentSpan.Status)
	}

	found := false
	for _, kv := range parentSpan.Attributes {
		if kv.Key == AttrOperation && kv.Value.AsString() == "negate" {
			found = true
		}
	}
	if !found {
		t.Errorf("operation attribute missing: %v", parentSpan.Attributes)
	}
}

// TestTracer_Nil tests that a nil tracer produces noop spans
func TestTracer_Nil(t *testing.T) {
	var tracer *Tracer
	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()

	if span.SpanContext().IsValid() {
		t.Error("expected an invalid span context from a nil tracer")
	}
	if TraceID(ctx) != "" {
		t.Error("expected no trace id")
	}
	if tracer.Enabled() {
		t.Error("nil tracer should not be enabled")
	}
	if err := tracer.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
	if _, err := NewWithExporter("x", nil); err == nil {
		t.Error("expected error for nil exporter")
	}
}

// TestSamplerFor tests sampler selection from configuration.
func TestSamplerFor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantErr bool
	}{
		{name: "default", cfg: config.TracingConfig{}},
		{name: "always", cfg: config.TracingConfig{Sampler: SamplerAlways}},
		{name: "never", cfg: config.TracingConfig{Sampler: SamplerNever}},
		{name: "half", cfg: config.TracingConfig{Sampler: SamplerRatio, SampleRatio: 0.5}},
		{name: "ratio above one", cfg: config.TracingConfig{Sampler: SamplerRatio, SampleRatio: 1.5}, wantErr: true},
		{name: "unknown", cfg: config.TracingConfig{Sampler: "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := samplerFor(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("samplerFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("expected non-nil sampler")
			}
		})
	}
}
