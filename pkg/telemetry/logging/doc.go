// Package logging configures log/slog for querybuilder.
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//
//	// Component loggers follow the usual convention
//	storeLogger := logger.With("component", "store")
//
//	// Context-aware logging
//	ctx = logging.WithQuery(ctx, "dante")
//	ctx = logging.WithOperation(ctx, "deprecate")
//	storeLogger.InfoContext(ctx, "query saved") // includes query and operation
//
// When an OpenTelemetry span is active in the context, its trace and span
// ids are added as trace_id and span_id.
package logging
