// jsonlog.go - Leveled structured logging (text for development, JSON in production)
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger writes one structured line per entry through a slog handler.
type Logger struct {
	handler slog.Handler
}

// DefaultLogger is used by the package-level helpers.
var DefaultLogger *Logger

func init() {
	ConfigureLogging()
}

// ConfigureLogging rebuilds DefaultLogger from FLAVORS_LOG_FORMAT,
// FLAVORS_ENV and FLAVORS_LOG_LEVEL. Call it again after loading a .env file.
func ConfigureLogging() {
	enableJSON := os.Getenv("FLAVORS_LOG_FORMAT") == "json" || os.Getenv("FLAVORS_ENV") == "production"
	DefaultLogger = NewLogger(os.Stdout, ParseLogLevel(os.Getenv("FLAVORS_LOG_LEVEL")), enableJSON)
}

// NewLogger builds a logger writing to w at or above minLevel.
func NewLogger(w io.Writer, minLevel LogLevel, enableJSON bool) *Logger {
	opts := &slog.HandlerOptions{Level: minLevel.slogLevel()}
	if enableJSON {
		return &Logger{handler: slog.NewJSONHandler(w, opts)}
	}
	return &Logger{handler: slog.NewTextHandler(w, opts)}
}

// ParseLogLevel maps a configuration string to a level, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch LogLevel(s) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return LogLevel(s)
	default:
		return LogLevelInfo
	}
}

// getCaller returns the file and line number of the caller
func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			file = file[i+1:]
			break
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]any, err error) {
	ctx := context.Background()
	lvl := level.slogLevel()
	if !l.handler.Enabled(ctx, lvl) {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(fields)+2)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	// getCaller, log, then the exported method or helper.
	if caller := getCaller(3); caller != "" {
		attrs = append(attrs, slog.String("caller", caller))
	}

	slog.New(l.handler).LogAttrs(ctx, lvl, msg, attrs...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]any) {
	l.log(LogLevelDebug, msg, fields, nil)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]any) {
	l.log(LogLevelInfo, msg, fields, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]any) {
	l.log(LogLevelWarn, msg, fields, nil)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]any, err error) {
	l.log(LogLevelError, msg, fields, err)
}

// Global logging functions. They call log directly so the caller frame sits
// at the same depth as for the methods.

func Debug(msg string, fields map[string]any) {
	DefaultLogger.log(LogLevelDebug, msg, fields, nil)
}

func Info(msg string, fields map[string]any) {
	DefaultLogger.log(LogLevelInfo, msg, fields, nil)
}

func Warn(msg string, fields map[string]any) {
	DefaultLogger.log(LogLevelWarn, msg, fields, nil)
}

func Error(msg string, fields map[string]any, err error) {
	DefaultLogger.log(LogLevelError, msg, fields, err)
}
