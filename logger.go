package recgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/recgo/core"
)

// Logger wraps slog.Logger with recgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSource adds the recording source name to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// WithStream adds a stream id field to the logger.
func (l *Logger) WithStream(id core.StreamID) *Logger {
	return &Logger{
		Logger: l.Logger.With("stream", id.String()),
	}
}

// LogOpen logs the open of a recording.
func (l *Logger) LogOpen(ctx context.Context, name string, records, streams int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"source", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "recording opened",
			"source", name,
			"records", records,
			"streams", streams,
		)
	}
}

// LogDecode logs the decode of one record.
func (l *Logger) LogDecode(ctx context.Context, i int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"index", i,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "record decoded",
			"index", i,
		)
	}
}

// LogFilter logs the derivation of a filtered view.
func (l *Logger) LogFilter(ctx context.Context, enabled, total int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "filter failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "filter derived",
			"enabled", enabled,
			"total", total,
		)
	}
}

// LogSearch logs a timestamp search.
func (l *Logger) LogSearch(ctx context.Context, id core.StreamID, ts float64, result int, err error) {
	if err != nil {
		l.DebugContext(ctx, "time search missed",
			"stream", id.String(),
			"timestamp", ts,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "time search completed",
			"stream", id.String(),
			"timestamp", ts,
			"result", result,
		)
	}
}
