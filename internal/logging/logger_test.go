package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"padded debug", " debug ", slog.LevelDebug},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"info", "DEBUG", "trace", "warn", "error"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("loud") {
		t.Error("ValidLevel(loud) = true")
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"error", false, false},
		{"info", false, true},
		{"debug", true, true},
		{"trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug visible = %v, want %v", got, tt.logAtDebug)
			}

			buf.Reset()
			logger.Info("info message")
			if got := strings.Contains(buf.String(), "info message"); got != tt.logAtInfo {
				t.Errorf("info visible = %v, want %v", got, tt.logAtInfo)
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "payload decoded")

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}

func TestNewDecisionLogger_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	dl := NewDecisionLogger(dir, "info")
	if dl != nil {
		t.Fatal("expected nil DecisionLogger at info level")
	}

	dl.LogResolution(Resolution{Operation: "latest"})

	if _, err := os.Stat(filepath.Join(dir, DecisionFile)); err == nil {
		t.Errorf("%s should not exist at info level", DecisionFile)
	}
}

func TestDecisionLogger_LogResolution(t *testing.T) {
	dir := t.TempDir()
	dl := NewDecisionLogger(dir, "debug")
	if dl == nil {
		t.Fatal("expected DecisionLogger at debug level")
	}

	dl.LogResolution(Resolution{
		Scenario:  "flat_and_stable",
		Operation: "momentum",
		Backing:   "fixture",
		Resource:  "flat_and_stable_momentum_effect",
		Count:     4,
	})
	dl.Close()

	data, err := os.ReadFile(filepath.Join(dir, DecisionFile))
	if err != nil {
		t.Fatalf("read %s: %v", DecisionFile, err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("parse entry: %v", err)
	}
	if entry["scenario"] != "flat_and_stable" || entry["backing"] != "fixture" {
		t.Errorf("entry = %v", entry)
	}
	if entry["count"] != float64(4) {
		t.Errorf("count = %v, want 4", entry["count"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected time field")
	}
	if _, ok := entry["error"]; ok {
		t.Error("empty error should be omitted")
	}
}

func TestDecisionLogger_MultipleWrites(t *testing.T) {
	dir := t.TempDir()
	dl := NewDecisionLogger(dir, "trace")
	defer dl.Close()

	dl.Log(map[string]any{"event": "first"})
	dl.LogResolution(Resolution{Operation: "second"})

	data, err := os.ReadFile(filepath.Join(dir, DecisionFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], `"event":"first"`) || !strings.Contains(lines[1], `"operation":"second"`) {
		t.Errorf("lines = %q", lines)
	}
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestDecisionLogger_To(t *testing.T) {
	var rec closeRecorder
	dl := NewDecisionLoggerTo(&rec)

	event := map[string]any{"event": "test"}
	dl.Log(event)
	if _, hasTime := event["time"]; hasTime {
		t.Error("Log() mutated caller's map")
	}

	dl.Close()
	if !rec.closed {
		t.Error("Close() did not close writer")
	}

	n := rec.Len()
	dl.Log(map[string]any{"event": "after_close"})
	if rec.Len() != n {
		t.Error("write after Close() reached writer")
	}
}

func TestDecisionLogger_NilSafety(t *testing.T) {
	var dl *DecisionLogger
	dl.Log(map[string]any{"event": "should_not_panic"})
	dl.LogResolution(Resolution{})
	dl.Close()
}

func TestNewDecisionLogger_CreatesDir(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "sub", "dir")

	dl := NewDecisionLogger(nested, "debug")
	if dl == nil {
		t.Fatal("expected non-nil DecisionLogger when dir needs creation")
	}
	defer dl.Close()

	dl.Log(map[string]any{"event": "dir_create_test"})

	info, err := os.Stat(filepath.Join(nested, DecisionFile))
	if err != nil {
		t.Fatalf("%s should exist: %v", DecisionFile, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}
