package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"karaoke/internal/services"
	"karaoke/internal/stage"
)

const stageName = "download"

// Config captures yt-dlp settings.
type Config struct {
	Binary       string
	Format       string
	AudioFormat  string
	AudioQuality string
	Timeout      time.Duration
}

// Downloader resolves a job source into a local audio file.
type Downloader struct {
	cfg Config
	run services.CommandRunner
}

// Option customizes a Downloader.
type Option func(*Downloader)

// WithRunner replaces the subprocess runner.
func WithRunner(run services.CommandRunner) Option {
	return func(d *Downloader) {
		if run != nil {
			d.run = run
		}
	}
}

// New constructs a Downloader, filling blank settings with yt-dlp defaults.
func New(cfg Config, opts ...Option) *Downloader {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "yt-dlp"
	}
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = "bestaudio/best"
	}
	if strings.TrimSpace(cfg.AudioFormat) == "" {
		cfg.AudioFormat = "mp3"
	}
	if strings.TrimSpace(cfg.AudioQuality) == "" {
		cfg.AudioQuality = "192K"
	}
	d := &Downloader{cfg: cfg, run: services.ExecCommand}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	parsed, err := url.Parse(strings.TrimSpace(source))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Fetch returns a local path for source. Existing local files are returned
// unchanged; URLs are downloaded into destDir.
func (d *Downloader) Fetch(ctx context.Context, source, destDir string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "resolve source", "No media source supplied", nil)
	}
	if !IsRemote(source) {
		if info, err := os.Stat(source); err == nil && !info.IsDir() {
			return source, nil
		}
		return "", services.Wrap(services.ErrNotFound, stageName, "resolve source",
			fmt.Sprintf("Local media %q does not exist", source), nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageName, "ensure download dir", "Could not create download directory", err)
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	output, err := d.run(ctx, d.cfg.Binary, d.args(source, destDir)...)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return "", services.Wrap(marker, stageName, "yt-dlp", "Media download failed", err)
	}
	path := lastLine(string(output))
	if path == "" {
		return "", services.Wrap(services.ErrExternalTool, stageName, "yt-dlp", "yt-dlp did not report an output file", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageName, "yt-dlp",
			fmt.Sprintf("Reported output %q is missing", path), err)
	}
	return path, nil
}

// HealthCheck reports whether the yt-dlp binary is configured.
func (d *Downloader) HealthCheck(context.Context) stage.Health {
	if strings.TrimSpace(d.cfg.Binary) == "" {
		return stage.Unhealthy(stageName, "yt-dlp binary not configured")
	}
	return stage.Healthy(stageName)
}

func (d *Downloader) args(source, destDir string) []string {
	return []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-f", d.cfg.Format,
		"-x",
		"--audio-format", d.cfg.AudioFormat,
		"--audio-quality", d.cfg.AudioQuality,
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
		source,
	}
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
