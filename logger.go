package kpalette

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kpalette-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCount adds a pixel count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("pixels", count),
	}
}

// LogIteration logs a completed assign+update pass.
func (l *Logger) LogIteration(ctx context.Context, s *Snapshot) {
	l.DebugContext(ctx, "iteration completed",
		"iteration", s.Iteration,
		"inertia", s.Inertia,
		"shift", s.Shift,
		"reassigned", s.Reassigned,
		"converged", s.Converged,
	)
}

// LogEmptyClusters logs clusters that received no pixels.
func (l *Logger) LogEmptyClusters(ctx context.Context, iteration int, clusters []int) {
	l.WarnContext(ctx, "empty clusters",
		"iteration", iteration,
		"clusters", clusters,
	)
}

// LogRun logs the outcome of a clustering run. res may be nil.
func (l *Logger) LogRun(ctx context.Context, res *Result, err error) {
	if err != nil {
		args := []any{"error", err}
		if res != nil {
			args = append(args, "iterations", res.Iterations)
		}
		l.ErrorContext(ctx, "clustering failed", args...)
		return
	}

	if !res.Converged {
		l.InfoContext(ctx, "clustering stopped at iteration limit",
			"iterations", res.Iterations,
			"inertia", res.Inertia,
		)
		return
	}

	l.InfoContext(ctx, "clustering converged",
		"iterations", res.Iterations,
		"inertia", res.Inertia,
		"empty_cluster_events", res.EmptyClusterEvents,
	)
}
