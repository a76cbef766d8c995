package stage

import (
	"context"
	"strings"

	"karaoke/internal/lyrics"
)

// Mode selects between real collaborators and deterministic stubs.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeMock   Mode = "mock"
)

// ParseMode maps free-form input onto a Mode, defaulting to normal.
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeMock)) {
		return ModeMock
	}
	return ModeNormal
}

// Context is the value threaded through the chain. Each stage returns an
// augmented copy.
type Context struct {
	JobID  string
	Mode   Mode
	Title  string
	Artist string

	// Source is the caller-supplied URL or local path.
	Source         string
	SourceLanguage string
	TargetLanguage string
	Template       string

	SourcePath       string
	VocalsPath       string
	InstrumentalPath string
	Lyrics           *lyrics.Transcript
	SubtitlePath     string
	VideoPath        string
	// OutputPath is the public URL when the upload succeeded, otherwise the local video path.
	OutputPath string
	Published  bool
}

// Mock reports whether the chain runs with stub collaborators.
func (c Context) Mock() bool {
	return c.Mode == ModeMock
}

// Handler is one step of the chain.
type Handler func(context.Context, Context) (Context, error)
