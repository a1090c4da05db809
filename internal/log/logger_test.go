package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentSeeder, Output: &buf})

	logger.Info("Created category", FieldCategory, "Salary")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=seeder") || !strings.Contains(out, "category=Salary") {
		t.Fatalf("missing fields in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered at info level")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf}).WithComponent(ComponentHTTP).With(FieldRequestID, "abc")

	ctx := NewContext(context.Background(), logger)
	FromContext(ctx).InfoContext(ctx, "hello")
	if !strings.Contains(buf.String(), "request_id=abc") || !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	if got := FromContext(context.Background()).Component(); got != "unknown" {
		t.Fatalf("expected fallback component, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}
