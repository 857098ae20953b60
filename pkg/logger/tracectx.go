package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// AttrsFromCtx отдаёт trace_id и span_id активного спана, nil без спана.
func AttrsFromCtx(ctx context.Context) []slog.Attr {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}

// Args склеивает атрибуты спана и kv в аргументы для slog.InfoContext и компании.
func Args(ctx context.Context, kv ...any) []any {
	attrs := AttrsFromCtx(ctx)
	out := make([]any, 0, len(attrs)+len(kv))
	for _, a := range attrs {
		out = append(out, a)
	}

	return append(out, kv...)
}
