package pipeline

import (
	"errors"
	"fmt"
)

// Failure kinds raised by collaborators. Match with errors.Is.
var (
	ErrDownload      = errors.New("download failed")
	ErrSeparation    = errors.New("separation failed")
	ErrTranscription = errors.New("transcription failed")
	ErrTranslation   = errors.New("translation failed")
	ErrRender        = errors.New("render failed")
)

// StageError ties a collaborator failure to the step that raised it.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stageFailure(stage string, kind, err error) error {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
