// Package logging provides the structured logger shared by the image
// subsystems. It wraps log/slog and adds the fields every component logs with.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level represents different logging levels.
type Level int

// Supported logging levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name (debug, info, warn, error) to a Level.
// Unknown names map to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config holds configuration for the logger.
type Config struct {
	// Level sets the minimum log level.
	Level Level
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// EnableCallerInfo includes file and line number in logs.
	EnableCallerInfo bool
	// Output is where records are written. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Logger provides structured logging. The zero value and a nil *Logger
// discard everything.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger with the given configuration.
func NewLogger(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.EnableCallerInfo,
	}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

// NewNopLogger creates a no-op logger that discards all log messages.
func NewNopLogger() *Logger {
	return &Logger{}
}

// FromSlog wraps an existing slog.Logger.
func FromSlog(l *slog.Logger) *Logger {
	return &Logger{logger: l}
}

func (l *Logger) enabled() bool {
	return l != nil && l.logger != nil
}

// Debug logs debug-level messages.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

// Info logs info-level messages.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.logger.InfoContext(ctx, msg, args...)
	}
}

// Warn logs warning-level messages.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.logger.WarnContext(ctx, msg, args...)
	}
}

// Error logs error-level messages.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.logger.ErrorContext(ctx, msg, args...)
	}
}

// With returns a logger with additional context fields.
func (l *Logger) With(args ...any) *Logger {
	if !l.enabled() {
		return l
	}
	return &Logger{logger: l.logger.With(args...)}
}

// WithOperation returns a logger with operation context.
func (l *Logger) WithOperation(operation string) *Logger {
	return l.With("operation", operation)
}

// WithProject returns a logger with project context.
func (l *Logger) WithProject(project string) *Logger {
	return l.With("project", project)
}

// WithDuration returns a logger with duration context.
func (l *Logger) WithDuration(duration time.Duration) *Logger {
	return l.With("duration", duration)
}

// LogError logs err at error level with its message under the "error" key.
func (l *Logger) LogError(ctx context.Context, err error, msg string, args ...any) {
	if err == nil {
		return
	}
	l.Error(ctx, msg, append(args, "error", err.Error())...)
}
