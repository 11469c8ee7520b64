// Package tracing provides OpenTelemetry tracing for querybuilder.
//
// Each session operation runs in a span carrying the query name and the
// operation; storage calls made inside it become child spans. Spans are
// exported to an OTLP gRPC collector when telemetry.tracing is enabled.
//
// # Sampling Strategies
//
//   - always: Sample all traces
//   - never: Sample no traces
//   - ratio: Sample a fraction of traces (sample_ratio)
//
// # Usage
//
//	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "session.apply",
//	    trace.WithAttributes(tracing.QueryAttributes("dante", "deprecate")...))
//	defer span.End()
package tracing
