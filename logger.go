package chunkvec

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with chunkvec-specific fields.
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
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPageSize adds a page_size field.
func (l *Logger) WithPageSize(pageSize int) *Logger {
	return &Logger{
		Logger: l.Logger.With("page_size", pageSize),
	}
}

// WithName adds a name field (useful for telling vectors apart).
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

func (l *Logger) debugEnabled(ctx context.Context) bool {
	return l.Enabled(ctx, slog.LevelDebug)
}

// LogInvalidation logs a generation bump. threshold < 0 means full.
func (l *Logger) LogInvalidation(ctx context.Context, op string, generation uint64, threshold int) {
	if threshold < 0 {
		l.DebugContext(ctx, "iterators invalidated",
			"op", op,
			"generation", generation,
			"scope", "full",
		)
		return
	}
	l.DebugContext(ctx, "iterators invalidated",
		"op", op,
		"generation", generation,
		"scope", "partial",
		"threshold", threshold,
	)
}

// LogCheckFailure logs a failed iterator or index check.
func (l *Logger) LogCheckFailure(ctx context.Context, err *CheckError) {
	args := []any{
		"op", err.Op,
		"kind", err.Kind.String(),
		"position", err.Position,
		"size", err.Size,
		"generation", err.Generation,
	}
	if err.Kind == KindInvalidated {
		args = append(args, "threshold", err.Threshold)
	}
	l.ErrorContext(ctx, "check failed", append(args, "error", err)...)
}

// LogPages logs page allocation and release.
func (l *Logger) LogPages(ctx context.Context, op string, allocated, released, active int) {
	l.DebugContext(ctx, "pages changed",
		"op", op,
		"allocated", allocated,
		"released", released,
		"active", active,
	)
}

// LogSnapshot logs a snapshot write.
func (l *Logger) LogSnapshot(ctx context.Context, name string, elements int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"elements", elements,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"elements", elements,
			"bytes", bytes,
		)
	}
}

// LogRestore logs a snapshot read.
func (l *Logger) LogRestore(ctx context.Context, name string, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot restored",
			"name", name,
			"elements", elements,
		)
	}
}

// LogCommit logs a CURRENT pointer update.
func (l *Logger) LogCommit(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot committed",
			"name", name,
		)
	}
}
