// Package logger provides process-wide logging for the contextpacket CLI.
// Debug and info messages are emitted only in verbose mode; warnings are
// always emitted. Records are written through log/slog as text or JSON.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Format selects the log record encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatText
	base              = newLogger(os.Stderr, FormatText, false)
)

// newLogger builds the slog logger for the current settings.
// Timestamps are dropped from text records so output stays reproducible.
func newLogger(w io.Writer, f Format, v bool) *slog.Logger {
	level := slog.LevelWarn
	if v {
		level = slog.LevelDebug
	}

	if f == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// rebuild replaces the logger (caller must hold lock).
func rebuild() {
	base = newLogger(output, format, verbose)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// SetFormat selects text or JSON records. Unknown formats fall back to text.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatText
	}
	format = f
	rebuild()
}

// Logger returns the current structured logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func logf(level slog.Level, msg string, args ...any) {
	l := Logger()
	if !l.Enabled(context.Background(), level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.Log(context.Background(), level, msg)
}

// Debug logs a formatted message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(slog.LevelDebug, format, args...)
}

// Section logs a stage header if verbose mode is enabled.
func Section(name string) {
	Logger().Info("section", "name", name)
}

// Info logs a formatted informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(slog.LevelInfo, format, args...)
}

// Warn logs a formatted warning. Warnings are emitted regardless of verbose mode.
func Warn(format string, args ...any) {
	logf(slog.LevelWarn, format, args...)
}

// Event logs a structured informational record with key-value attributes.
func Event(msg string, attrs ...any) {
	Logger().Info(msg, attrs...)
}
