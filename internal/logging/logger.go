// Package logging provides leveled logging and resolution tracing for glucosim.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A DecisionLogger for JSONL resolution traces (~/.glucosim/resolutions.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug.
// At this level decoded fixture payload sizes and sample windows are logged.
const LevelTrace = slog.LevelDebug - 4

// DecisionFile is the file name the DecisionLogger appends to.
const DecisionFile = "resolutions.jsonl"

// ParseLevel maps a level name to a slog.Level.
// Supported values: "error", "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a level ParseLevel understands.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "warn", "warning", "info", "debug", "trace":
		return true
	}
	return false
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Resolution records how a store query was answered.
type Resolution struct {
	Scenario  string `json:"scenario"`
	Operation string `json:"operation"`
	Backing   string `json:"backing"`
	Resource  string `json:"resource,omitempty"`
	Count     int    `json:"count"`
	Error     string `json:"error,omitempty"`
}

// DecisionLogger appends resolution events to a JSONL file.
// It is safe for concurrent use, and a nil DecisionLogger is a no-op.
type DecisionLogger struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewDecisionLogger opens dir/resolutions.jsonl for append.
// At info level and above it returns nil and creates nothing.
// It also returns nil if the file cannot be opened.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) > slog.LevelDebug {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, DecisionFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &DecisionLogger{w: f}
}

// NewDecisionLoggerTo writes events to w. Used by tests and the MCP server.
func NewDecisionLoggerTo(w io.WriteCloser) *DecisionLogger {
	return &DecisionLogger{w: w}
}

// LogResolution writes r as one JSONL line stamped with the current time.
func (dl *DecisionLogger) LogResolution(r Resolution) {
	if dl == nil {
		return
	}
	dl.write(struct {
		Time string `json:"time"`
		Resolution
	}{time.Now().UTC().Format(time.RFC3339Nano), r})
}

// Log writes an arbitrary event map as one JSONL line.
// A "time" field is added; the caller's map is not mutated.
func (dl *DecisionLogger) Log(event map[string]any) {
	if dl == nil {
		return
	}
	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	dl.write(entry)
}

func (dl *DecisionLogger) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.w == nil {
		return
	}
	_, _ = dl.w.Write(data)
}

// Close closes the underlying writer. Safe to call on nil receiver.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.w != nil {
		dl.w.Close()
		dl.w = nil
	}
}
