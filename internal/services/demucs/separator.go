package demucs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"karaoke/internal/services"
	"karaoke/internal/stage"
)

const (
	stageName = "separation"

	// DefaultModel is the hybrid transformer model.
	DefaultModel = "htdemucs"

	vocalsFile       = "vocals.wav"
	instrumentalFile = "no_vocals.wav"
)

// Config captures Demucs settings.
type Config struct {
	Binary string
	Model  string
	Device string
}

// Stems are the two files produced by a two-stem run.
type Stems struct {
	Vocals       string
	Instrumental string
}

// Separator runs Demucs.
type Separator struct {
	cfg Config
	run services.CommandRunner
}

// Option customizes a Separator.
type Option func(*Separator)

// WithRunner replaces the subprocess runner.
func WithRunner(run services.CommandRunner) Option {
	return func(s *Separator) {
		if run != nil {
			s.run = run
		}
	}
}

// New constructs a Separator.
func New(cfg Config, opts ...Option) *Separator {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "demucs"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	s := &Separator{cfg: cfg, run: services.ExecCommand}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StemPaths returns where Demucs writes the stems for input under outDir.
func (s *Separator) StemPaths(input, outDir string) Stems {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Join(outDir, s.cfg.Model, name)
	return Stems{
		Vocals:       filepath.Join(dir, vocalsFile),
		Instrumental: filepath.Join(dir, instrumentalFile),
	}
}

// Separate runs Demucs on input and returns the stem paths. Both stems must
// exist afterwards.
func (s *Separator) Separate(ctx context.Context, input, outDir string) (Stems, error) {
	if strings.TrimSpace(input) == "" {
		return Stems{}, services.Wrap(services.ErrValidation, stageName, "separate", "No input audio supplied", nil)
	}
	if _, err := os.Stat(input); err != nil {
		return Stems{}, services.Wrap(services.ErrNotFound, stageName, "separate",
			fmt.Sprintf("Input audio %q is missing", input), err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Stems{}, services.Wrap(services.ErrConfiguration, stageName, "ensure output dir", "Could not create separation directory", err)
	}

	args := []string{"-n", s.cfg.Model, "--two-stems=vocals", "-o", outDir}
	if device := strings.TrimSpace(s.cfg.Device); device != "" {
		args = append(args, "-d", device)
	}
	args = append(args, input)
	if _, err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return Stems{}, services.Wrap(services.ErrExternalTool, stageName, "demucs", "Stem separation failed", err)
	}

	stems := s.StemPaths(input, outDir)
	for _, path := range []string{stems.Vocals, stems.Instrumental} {
		if _, err := os.Stat(path); err != nil {
			return Stems{}, services.Wrap(services.ErrExternalTool, stageName, "demucs",
				fmt.Sprintf("Expected stem %q was not produced", path), err)
		}
	}
	return stems, nil
}

// HealthCheck reports whether a Demucs binary is configured.
func (s *Separator) HealthCheck(context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.Binary) == "" {
		return stage.Unhealthy(stageName, "demucs binary not configured")
	}
	return stage.Healthy(stageName)
}
