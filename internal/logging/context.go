package logging

import (
	"context"
	"log/slog"

	"descant/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for queue item identifiers.
	FieldItemID = "item_id"
	// FieldStage is the standardized structured logging key for workflow stage names.
	FieldStage = "stage"
	// FieldWindow is the standardized structured logging key for a narration window label (e.g. "12.50-18.00").
	FieldWindow = "window"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var attrs []Attr
	if id, ok := services.ItemIDFromContext(ctx); ok {
		attrs = append(attrs, Int64(FieldItemID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldCorrelationID, requestID))
	}
	return attrs
}

// WithContext returns a logger annotated with any standardized fields found in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
