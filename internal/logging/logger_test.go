package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	WithComponent(logger, "downloads").Info("job started", String(FieldJobID, "abc"))

	line := buf.String()
	if !strings.Contains(line, "[downloads]") {
		t.Errorf("missing component prefix: %q", line)
	}
	if !strings.Contains(line, "job_id=abc") {
		t.Errorf("missing attribute: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should not repeat as key=value: %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("event", String("title", "two words"))
	if !strings.Contains(buf.String(), `title="two words"`) {
		t.Errorf("expected quoted value, got %q", buf.String())
	}
}

func TestNoopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(nil, slog.LevelError) { //nolint:staticcheck
		t.Fatal("noop logger should never be enabled")
	}
}
