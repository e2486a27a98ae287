package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Environments select the output format: text for local development, JSON otherwise.
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// Logger is the logging contract used across the service.
// Args are slog-style alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// New picks the handler by environment.
func New(env string, level string) (Logger, error) {
	switch env {
	case EnvDevelopment:
		return NewTextLogger(level)
	case EnvProduction:
		return NewJSONLogger(level)
	default:
		return nil, fmt.Errorf("unknown environment %q", env)
	}
}

// NewTextLogger writes human readable records to stderr.
func NewTextLogger(level string) (Logger, error) {
	return newLogger(level, func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(w, opts)
	})
}

// NewJSONLogger writes one JSON object per record to stderr.
func NewJSONLogger(level string) (Logger, error) {
	return newLogger(level, func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewJSONHandler(w, opts)
	})
}

// NewNoOpLogger discards everything. Handy in tests.
func NewNoOpLogger() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}

func newLogger(level string, mk func(io.Writer, *slog.HandlerOptions) slog.Handler) (Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   true,
		ReplaceAttr: trimSource,
	}

	return &slogLogger{logger: slog.New(mk(os.Stderr, opts))}, nil
}
