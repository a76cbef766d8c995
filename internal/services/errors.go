package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Error carries a marker plus the stage/operation context it was raised in.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Marker, detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Marker, detail)
}

// Unwrap exposes both the marker and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Cause}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// ErrorDetails is the log-friendly breakdown of a failure.
type ErrorDetails struct {
	Kind      string
	Operation string
	Message   string
	Hint      string
	Cause     string
}

// Details classifies err for logging. Errors not built by Wrap report their
// full text as the message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return ErrorDetails{Kind: kindOf(err), Message: err.Error(), Hint: hintFor(err)}
	}
	details := ErrorDetails{
		Kind:      kindOf(svcErr.Marker),
		Operation: svcErr.Operation,
		Message:   svcErr.Message,
		Hint:      hintFor(svcErr.Marker),
	}
	if svcErr.Cause != nil {
		details.Cause = svcErr.Cause.Error()
	}
	if details.Message == "" {
		details.Message = err.Error()
	}
	return details
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "unknown"
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, ErrExternalTool):
		return "verify the tool is installed (karaoke health) and inspect its output"
	case errors.Is(err, ErrConfiguration):
		return "check the config file and environment overrides"
	case errors.Is(err, ErrValidation):
		return "check the job request or collaborator output"
	case errors.Is(err, ErrNotFound):
		return "confirm the referenced file or job exists"
	case errors.Is(err, ErrTimeout):
		return "retry the job or raise the collaborator timeout"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
