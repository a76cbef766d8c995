package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"karaoke/internal/services"
	"karaoke/internal/stage"
)

const stageName = "render"

// Config captures encoder settings.
type Config struct {
	Binary     string
	Background string
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
	Preset     string
}

// Request names the inputs and output of one render.
type Request struct {
	Instrumental string
	Subtitles    string
	Output       string
	// Background overrides the configured background when set.
	Background string
}

// Renderer encodes videos with ffmpeg.
type Renderer struct {
	cfg Config
	run services.CommandRunner
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithRunner replaces the subprocess runner.
func WithRunner(run services.CommandRunner) Option {
	return func(r *Renderer) {
		if run != nil {
			r.run = run
		}
	}
}

// New constructs a Renderer with defaults for blank settings.
func New(cfg Config, opts ...Option) *Renderer {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1080
	}
	if cfg.Height <= 0 {
		cfg.Height = 1920
	}
	if cfg.VideoCodec == "" {
		cfg.VideoCodec = "libx264"
	}
	if cfg.AudioCodec == "" {
		cfg.AudioCodec = "aac"
	}
	r := &Renderer{cfg: cfg, run: services.ExecCommand}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render encodes req and returns the output path.
func (r *Renderer) Render(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	if _, err := os.Stat(req.Instrumental); err != nil {
		return "", services.Wrap(services.ErrNotFound, stageName, "render",
			fmt.Sprintf("Instrumental track %q is missing", req.Instrumental), err)
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageName, "ensure output dir", "Could not create render directory", err)
	}
	if _, err := r.run(ctx, r.cfg.Binary, r.Args(req)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageName, "ffmpeg", "Video encode failed", err)
	}
	if _, err := os.Stat(req.Output); err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageName, "ffmpeg",
			fmt.Sprintf("Encoder did not produce %q", req.Output), err)
	}
	return req.Output, nil
}

// Args builds the ffmpeg command line for req.
func (r *Renderer) Args(req Request) []string {
	background := strings.TrimSpace(req.Background)
	if background == "" {
		background = strings.TrimSpace(r.cfg.Background)
	}
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	if background != "" {
		args = append(args, "-stream_loop", "-1", "-i", background)
	} else {
		canvas := fmt.Sprintf("color=c=black:s=%dx%d:r=30", r.cfg.Width, r.cfg.Height)
		args = append(args, "-f", "lavfi", "-i", canvas)
	}
	args = append(args,
		"-i", req.Instrumental,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-vf", "ass="+EscapeFilterPath(req.Subtitles),
		"-c:v", r.cfg.VideoCodec,
	)
	if preset := strings.TrimSpace(r.cfg.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", r.cfg.AudioCodec,
		"-shortest",
		req.Output,
	)
	return args
}

// HealthCheck reports whether an encoder binary is configured.
func (r *Renderer) HealthCheck(context.Context) stage.Health {
	if strings.TrimSpace(r.cfg.Binary) == "" {
		return stage.Unhealthy(stageName, "ffmpeg binary not configured")
	}
	return stage.Healthy(stageName)
}

// Resolution returns the canvas size as "WxH".
func (r *Renderer) Resolution() string {
	return strconv.Itoa(r.cfg.Width) + "x" + strconv.Itoa(r.cfg.Height)
}

// DryRun plans a render without encoding.
type DryRun struct{}

// Render returns the planned output path. Only the output is required, so
// mock jobs without a sample asset still complete.
func (DryRun) Render(_ context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Output) == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "render", "Output path required", nil)
	}
	return req.Output, nil
}

// HealthCheck always reports ready.
func (DryRun) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(stageName)
}

// EscapeFilterPath quotes a path for use inside a filtergraph argument.
func EscapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\\\`, `'`, `\\\'`, `:`, `\\:`, `,`, `\,`, `[`, `\[`, `]`, `\]`, `;`, `\;`)
	return replacer.Replace(path)
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.Subtitles) == "":
		return services.Wrap(services.ErrValidation, stageName, "render", "Subtitle document path required", nil)
	case strings.TrimSpace(req.Output) == "":
		return services.Wrap(services.ErrValidation, stageName, "render", "Output path required", nil)
	case strings.TrimSpace(req.Instrumental) == "":
		return services.Wrap(services.ErrValidation, stageName, "render", "Instrumental track required", nil)
	}
	return nil
}
