package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one migration run across all log lines.
	FieldRunID = "run_id"
	// FieldBatch is the 1-based destination batch number.
	FieldBatch = "batch"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	runIDKey contextKey = iota
	batchKey
)

// WithRunID tags ctx with the migration run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

func runIDFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithBatch tags ctx with the destination batch currently being copied.
func WithBatch(ctx context.Context, batch int) context.Context {
	return context.WithValue(ctx, batchKey, batch)
}

func batchFrom(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	n, ok := ctx.Value(batchKey).(int)
	return n, ok && n > 0
}

func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := runIDFrom(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if n, ok := batchFrom(ctx); ok {
		fields = append(fields, slog.Int(FieldBatch, n))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
