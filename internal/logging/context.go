package logging

import (
	"context"
	"log/slog"

	"karaoke/internal/services"
)

const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldStage         = "stage"
	FieldWorker        = "worker"
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering (stage_start, job_failed, ...).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's next step for a warning or error.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the services error classification.
	FieldErrorKind = "error_kind"
	// FieldErrorOperation names the collaborator call that failed.
	FieldErrorOperation = "error_operation"
	// FieldProgress is the ledger progress checkpoint.
	FieldProgress = "progress"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

var contextFields = []struct {
	key    string
	lookup func(context.Context) (string, bool)
}{
	{FieldJobID, services.JobIDFromContext},
	{FieldStage, services.StageFromContext},
	{FieldWorker, services.WorkerFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the job_id, stage, worker and correlation_id attrs
// present in ctx.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var attrs []Attr
	for _, f := range contextFields {
		if v, ok := f.lookup(ctx); ok {
			attrs = append(attrs, String(f.key, v))
		}
	}
	return attrs
}

// WithContext returns logger tagged with the ContextFields of ctx. A nil
// logger yields a no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if attrs := ContextFields(ctx); len(attrs) > 0 {
		return logger.With(Args(attrs...)...)
	}
	return logger
}
