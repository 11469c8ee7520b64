package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// QueryKey is the context key for the named query being edited.
	QueryKey contextKey = "query"

	// OperationKey is the context key for the editor operation in progress.
	OperationKey contextKey = "operation"
)

// WithQuery adds a named query to the context.
func WithQuery(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, QueryKey, name)
}

// GetQuery retrieves the named query from the context.
func GetQuery(ctx context.Context) string {
	if name, ok := ctx.Value(QueryKey).(string); ok {
		return name
	}
	return ""
}

// WithOperation adds an operation name to the context.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, OperationKey, op)
}

// GetOperation retrieves the operation name from the context.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(OperationKey).(string); ok {
		return op
	}
	return ""
}

// extractContextFields extracts common log fields from context.
func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if name := GetQuery(ctx); name != "" {
		attrs = append(attrs, slog.String(string(QueryKey), name))
	}
	if op := GetOperation(ctx); op != "" {
		attrs = append(attrs, slog.String(string(OperationKey), op))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}

// contextHandler adds context fields to each record before passing it on.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := extractContextFields(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}
