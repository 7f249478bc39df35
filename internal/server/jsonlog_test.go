package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelInfo, true)

	l.Error("db_init_failed", map[string]any{"step": "seed"}, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "db_init_failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["step"] != "seed" {
		t.Errorf("step = %v", entry["step"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v", entry["error"])
	}
	if caller, _ := entry["caller"].(string); !strings.HasPrefix(caller, "jsonlog_test.go:") {
		t.Errorf("caller = %v", entry["caller"])
	}
}

// captureDefault points the package-level helpers at a JSON buffer for the
// duration of the test.
func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := DefaultLogger
	DefaultLogger = NewLogger(&buf, LogLevelDebug, true)
	t.Cleanup(func() { DefaultLogger = prev })
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	return entry
}

func TestPackageHelpers_Caller(t *testing.T) {
	buf := captureDefault(t)

	helpers := map[string]func(){
		"debug": func() { Debug("d", nil) },
		"info":  func() { Info("i", nil) },
		"warn":  func() { Warn("w", nil) },
		"error": func() { Error("e", nil, errors.New("boom")) },
	}
	for name, call := range helpers {
		call()
		caller, _ := lastEntry(t, buf)["caller"].(string)
		if !strings.HasPrefix(caller, "jsonlog_test.go:") {
			t.Errorf("%s: caller = %q, want the call site in jsonlog_test.go", name, caller)
		}
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelWarn, false)

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("shown", map[string]any{"count": 2})
	out := buf.String()
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "count=2") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"info":    LogLevelInfo,
		"warn":    LogLevelWarn,
		"error":   LogLevelError,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
