package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StoreSpan starts a span for one entity store operation.
func StoreSpan(ctx context.Context, operation, category string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tracker.operation", operation),
			attribute.String("tracker.category", category),
		),
	)
}

// SessionSpan starts a span for one session gate operation.
func SessionSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "session."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("tracker.operation", operation)),
	)
}

// Finish records err on span and ends it. Errors matching one of expected
// are caller mistakes, not failures, and leave the status unset.
func Finish(span trace.Span, err error, expected ...any) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	for _, target := range expected {
		if errors.As(err, target) {
			span.SetAttributes(attribute.String("tracker.rejected", err.Error()))
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
