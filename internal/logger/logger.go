// Package logger provides leveled logging for tgindex.
// Warnings and errors are always written; debug and info lines only when
// verbose mode is enabled via the --verbose flag.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	level             = new(slog.LevelVar)
	base    *slog.Logger
)

func init() {
	level.Set(slog.LevelWarn)
	base = newLogger(output)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
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
	base = newLogger(w)
}

// With returns a structured logger carrying the given key/value pairs.
func With(args ...any) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(args...)
}

func logf(l slog.Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !base.Enabled(context.Background(), l) {
		return
	}
	base.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(slog.LevelDebug, format, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(slog.LevelInfo, format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	logf(slog.LevelWarn, format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	logf(slog.LevelError, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
