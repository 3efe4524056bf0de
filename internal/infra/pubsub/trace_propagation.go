package pubsub

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeaders is the span context a message carries so the consumer can
// continue the producer's trace.
type TraceHeaders struct {
	TraceID    string
	SpanID     string
	TraceFlags string
}

func ExtractTraceFromContext(ctx context.Context) TraceHeaders {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return TraceHeaders{}
	}

	return TraceHeaders{
		TraceID:    spanCtx.TraceID().String(),
		SpanID:     spanCtx.SpanID().String(),
		TraceFlags: strconv.FormatUint(uint64(spanCtx.TraceFlags()), 16),
	}
}

// InjectTraceIntoContext returns ctx unchanged when headers are missing or
// malformed.
func InjectTraceIntoContext(ctx context.Context, headers TraceHeaders) context.Context {
	if headers.TraceID == "" || headers.SpanID == "" {
		return ctx
	}

	traceID, err := trace.TraceIDFromHex(headers.TraceID)
	if err != nil {
		return ctx
	}
	spanID, err := trace.SpanIDFromHex(headers.SpanID)
	if err != nil {
		return ctx
	}

	var traceFlags trace.TraceFlags
	if flags, err := strconv.ParseUint(headers.TraceFlags, 16, 8); err == nil {
		traceFlags = trace.TraceFlags(flags)
	}

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: traceFlags,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, spanCtx)
}

// StartConsumerSpan starts the span of a message handler as a child of the
// producer span carried in headers.
func StartConsumerSpan(ctx context.Context, name string, headers TraceHeaders) (context.Context, trace.Span) {
	ctx = InjectTraceIntoContext(ctx, headers)
	return otel.Tracer("loanportal-server/pubsub").Start(ctx, name, trace.WithSpanKind(trace.SpanKindConsumer))
}
