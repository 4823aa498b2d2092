package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// TraceIDFromContext returns the trace ID of the active span, falling back
// to one stored with ContextWithTraceID. Returns "" when neither exists.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// ContextWithTraceID stores traceID for code that runs without a recording
// span. An empty traceID returns ctx unchanged.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, traceIDKey, traceID)
}
