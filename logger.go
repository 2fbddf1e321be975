package zindex

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with zindex-specific context.
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

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithOrder adds an order (bits per axis) field to the logger.
func (l *Logger) WithOrder(order int) *Logger {
	return &Logger{
		Logger: l.Logger.With("order", order),
	}
}

// LogConfigure logs a grid configuration attempt.
func (l *Logger) LogConfigure(ctx context.Context, kernel string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "configure failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "grid configured",
			"kernel", kernel,
		)
	}
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, count int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"count", count,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"count", count,
			"duration", duration,
		)
	}
}

// LogLoad logs the publication of a new index snapshot.
func (l *Logger) LogLoad(ctx context.Context, count, cells int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot published",
			"count", count,
			"cells", cells,
		)
	}
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, eps float64, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"epsilon", eps,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"epsilon", eps,
			"results", results,
		)
	}
}
