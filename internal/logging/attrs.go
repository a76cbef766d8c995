package logging

import (
	"context"
	"log/slog"
	"time"

	"karaoke/internal/services"
)

// Attr and Value alias the slog types so callers only import this package.
type (
	Attr  = slog.Attr
	Value = slog.Value
)

// FieldImpact is the standardized key for the job-facing consequence of a warning.
const FieldImpact = "impact"

func String(key, value string) Attr             { return slog.String(key, value) }
func Int(key string, value int) Attr            { return slog.Int(key, value) }
func Int64(key string, value int64) Attr        { return slog.Int64(key, value) }
func Uint64(key string, value uint64) Attr      { return slog.Uint64(key, value) }
func Float64(key string, value float64) Attr    { return slog.Float64(key, value) }
func Bool(key string, value bool) Attr          { return slog.Bool(key, value) }
func Duration(key string, d time.Duration) Attr { return slog.Duration(key, d) }
func Any(key string, value any) Attr            { return slog.Any(key, value) }

// Alert flags a line that should stand out when filtering.
func Alert(value string) Attr { return slog.String(FieldAlert, value) }

// Group nests attrs under key.
func Group(key string, attrs ...Attr) Attr {
	return slog.Group(key, Args(attrs...)...)
}

// Error records err under "error".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// ErrorAttrs expands err into the error, error_kind and (when known)
// error_operation fields using the services classification.
func ErrorAttrs(err error) []Attr {
	if err == nil {
		return nil
	}
	details := services.Details(err)
	attrs := []Attr{Error(err), String(FieldErrorKind, details.Kind)}
	if details.Operation != "" {
		attrs = append(attrs, String(FieldErrorOperation, details.Operation))
	}
	return attrs
}

// Args converts attrs to the variadic form slog's level methods take.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with a component name; nil yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey reports whether attrs contains key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Missing fields get generic defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	attrs = withDefault(attrs, FieldImpact, "job continues with reduced output")
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	logger.Error(msg, Args(attrs...)...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if HasAttrKey(attrs, key) {
		return attrs
	}
	return append(attrs, String(key, value))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }
