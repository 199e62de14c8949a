package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestStartSpanNestsUnderOneTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := WithLogger(context.Background(), logger)

	ctx, outer := StartSpan(ctx, "search")
	traceID := TraceIDFromContext(ctx)
	outerID := SpanIDFromContext(ctx)
	if traceID == "" || outerID == "" {
		t.Fatal("expected trace and span ids on context")
	}

	inner, span := StartSpan(ctx, "search.fanout", "type", "cat")
	if TraceIDFromContext(inner) != traceID {
		t.Fatal("expected child span to reuse trace id")
	}
	span.End()
	outer.EndWithError(errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines got %d: %s", len(lines), buf.String())
	}

	var child map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &child); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if child["parent_span_id"] != outerID || child["type"] != "cat" || child["trace_id"] != traceID {
		t.Fatalf("unexpected child span entry: %v", child)
	}

	var parent map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &parent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parent["level"] != "WARN" || parent["error"] != "boom" {
		t.Fatalf("unexpected failed span entry: %v", parent)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
}
