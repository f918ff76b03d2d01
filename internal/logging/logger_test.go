package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	WithComponent(logger, "discogs").Info("fetched release", Int64(FieldReleaseID, 1234))

	out := buf.String()
	if !strings.Contains(out, "[discogs]") {
		t.Fatalf("expected component prefix, got %q", out)
	}
	if !strings.Contains(out, "fetched release") {
		t.Fatalf("expected message, got %q", out)
	}
	if !strings.Contains(out, "release_id=1234") {
		t.Fatalf("expected release_id field, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := WithRunID(WithStage(WithReleaseID(context.Background(), 42), "enriching"), "run-1")
	WithContext(ctx, logger).Info("working")

	out := buf.String()
	for _, want := range []string{"release_id=42", "stage=enriching", "run_id=run-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}
