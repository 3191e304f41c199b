// Package logging provides a common interface and setup for application-wide logging.
package logging

// file: internal/logging/logger.go

import (
	"context"
	"io"
	"log/slog"
)

// Logger defines the interface for logging within the application.
// This abstraction allows for different logger implementations while
// maintaining consistent logging conventions throughout the codebase.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, args ...any)

	// Info logs an info-level message.
	Info(msg string, args ...any)

	// Warn logs a warning-level message.
	Warn(msg string, args ...any)

	// Error logs an error-level message.
	Error(msg string, args ...any)

	// WithContext returns a logger with context values.
	WithContext(ctx context.Context) Logger

	// WithField returns a logger with an additional field.
	WithField(key string, value any) Logger
}

// NoopLogger implements Logger but does nothing.
// Used as a fallback when no logger is provided.
type NoopLogger struct{}

// Debug implements Logger but performs no action.
func (l *NoopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger but performs no action.
func (l *NoopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger but performs no action.
func (l *NoopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger but performs no action.
func (l *NoopLogger) Error(_ string, _ ...any) {}

// WithContext implements Logger, returning the NoopLogger itself.
func (l *NoopLogger) WithContext(_ context.Context) Logger { return l }

// WithField implements Logger, returning the NoopLogger itself.
func (l *NoopLogger) WithField(_ string, _ any) Logger { return l }

// Global singleton instance of NoopLogger.
var noop = &NoopLogger{}

// GetNoopLogger returns the no-op logger instance.
func GetNoopLogger() Logger {
	return noop
}

// slogLogger is the reference Logger implementation, backed by log/slog.
type slogLogger struct {
	base *slog.Logger
}

// NewSlogLogger creates a Logger backed by a JSON slog handler writing to w at the given level.
func NewSlogLogger(level slog.Level, w io.Writer) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{base: slog.New(handler)}
}

// Debug logs a debug-level message via slog.
func (l *slogLogger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }

// Info logs an info-level message via slog.
func (l *slogLogger) Info(msg string, args ...any) { l.base.Info(msg, args...) }

// Warn logs a warning-level message via slog.
func (l *slogLogger) Warn(msg string, args ...any) { l.base.Warn(msg, args...) }

// Error logs an error-level message via slog.
func (l *slogLogger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// WithContext returns the receiver; the reference implementation has no ambient
// context attributes to extract, but the hook exists for embedders that do.
func (l *slogLogger) WithContext(_ context.Context) Logger {
	return l
}

// WithField returns a logger with an additional structured field attached to every record.
func (l *slogLogger) WithField(key string, value any) Logger {
	return &slogLogger{base: l.base.With(key, value)}
}

// defaultLogger is the application's default logger instance.
var defaultLogger = GetNoopLogger()

// Level aliases for log/slog's levels, so callers don't need to import log/slog
// just to pick a verbosity.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// levelVar backs SetLevel/IsDebugEnabled so InitLogging's handler can be
// reconfigured at runtime without rebuilding every derived logger.
var levelVar slog.LevelVar

// InitLogging configures the package-level default logger to write JSON-formatted
// records to w at the given level. Components that called GetLogger before this
// runs keep using the no-op logger until they call GetLogger again.
func InitLogging(level slog.Level, w io.Writer) {
	levelVar.Set(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: &levelVar})
	SetDefaultLogger(&slogLogger{base: slog.New(handler)})
}

// SetLevel adjusts the verbosity of the logger installed by InitLogging.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// IsDebugEnabled reports whether the current level permits debug-level records.
func IsDebugEnabled() bool {
	return levelVar.Level() <= LevelDebug
}

// SetDefaultLogger sets the default logger for the application.
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// GetLogger returns a logger for a named component, derived from the default logger.
func GetLogger(name string) Logger {
	return defaultLogger.WithField("component", name)
}
