package whisperx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	langpkg "karaoke/internal/language"
	"karaoke/internal/lyrics"
	"karaoke/internal/services"
	"karaoke/internal/stage"
)

const stageName = "transcription"

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg Config
	run services.CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg.withDefaults(), run: services.ExecCommand}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(run services.CommandRunner) {
	if run != nil {
		s.run = run
	}
}

// Transcribe runs WhisperX on audioPath and returns the aligned transcript.
// An empty language lets WhisperX detect it.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir, language string) (lyrics.Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return lyrics.Transcript{}, services.Wrap(services.ErrValidation, stageName, "transcribe", "No audio supplied", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return lyrics.Transcript{}, services.Wrap(services.ErrConfiguration, stageName, "ensure output dir", "Could not create transcription directory", err)
	}

	if _, err := s.run(ctx, s.cfg.Binary, s.buildArgs(audioPath, outputDir, language)...); err != nil {
		return lyrics.Transcript{}, services.Wrap(services.ErrExternalTool, stageName, "whisperx", "Transcription failed", err)
	}

	jsonPath := JSONPath(audioPath, outputDir)
	transcript, err := lyrics.Load(jsonPath)
	if err != nil {
		return lyrics.Transcript{}, services.Wrap(services.ErrExternalTool, stageName, "read transcript",
			fmt.Sprintf("WhisperX output %q unreadable", jsonPath), err)
	}
	if transcript.Language == "" {
		transcript.Language = langpkg.ToISO2(language)
	}
	return transcript, nil
}

// HealthCheck reports whether the launcher is configured.
func (s *Service) HealthCheck(context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.Binary) == "" {
		return stage.Unhealthy(stageName, "whisperx launcher not configured")
	}
	return stage.Healthy(stageName)
}

// JSONPath is where WhisperX writes the transcript for audioPath.
func JSONPath(audioPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, base+".json")
}

// buildArgs assembles the launcher arguments:
//
//	uvx [indexes] whisperx <audio> --model M --output_dir D [decode flags] --vad_method V [--language L] [device]
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := append(s.cfg.indexes(), "whisperx", source, "--model", s.cfg.Model, "--output_dir", outputDir)
	args = append(args, decodeFlags...)
	args = append(args, "--vad_method", s.cfg.VADMethod)
	if s.cfg.VADMethod == VADPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return append(args, s.cfg.device()...)
}
