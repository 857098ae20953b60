package tests

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/cwrk-planet/news-chat/pkg/logger"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestAttrsFromCtx_PropagatesTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	var buf syncBuffer
	err := logger.Init(logger.Config{
		Service:          "demo",
		Env:              logger.EnvProd,
		Backend:          logger.BackendZap,
		SampleInitial:    100000,
		SampleThereafter: 100000,
		Out:              &buf,
	})
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	slog.InfoContext(ctx, "with trace", logger.Args(ctx, "scope", "room:1")...)
	span.End()

	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &m); err != nil {
		t.Fatalf("expected JSON, got: %s, err=%v", buf.String(), err)
	}
	if m["trace_id"] == nil || m["span_id"] == nil {
		t.Fatalf("trace_id/span_id missing in log: %v", m)
	}
	if m["scope"] != "room:1" {
		t.Fatalf("kv after trace attrs missing: %v", m)
	}
	if m["msg"] != "with trace" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
}

func TestAttrsFromCtx_NoSpan(t *testing.T) {
	if attrs := logger.AttrsFromCtx(context.Background()); attrs != nil {
		t.Fatalf("expected no attrs without span, got %v", attrs)
	}
}
