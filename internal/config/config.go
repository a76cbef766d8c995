package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	MockAsset string `toml:"mock_asset"`
	APIBind   string `toml:"api_bind"`
	APIToken  string `toml:"api_token"`
}

// Workflow contains worker pool sizing and timing intervals (seconds).
type Workflow struct {
	Workers            int `toml:"workers"`
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Download configures the yt-dlp media downloader.
type Download struct {
	Binary         string `toml:"binary"`
	Format         string `toml:"format"`
	AudioFormat    string `toml:"audio_format"`
	AudioQuality   string `toml:"audio_quality"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Separation configures the demucs vocal separator.
type Separation struct {
	Binary string `toml:"binary"`
	Model  string `toml:"model"`
	Device string `toml:"device"`
}

// Transcription configures WhisperX transcription and word alignment.
type Transcription struct {
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
}

// Translation configures the linguistic annotation back end.
type Translation struct {
	Provider         string `toml:"provider"`
	TargetLanguage   string `toml:"target_language"`
	GeminiAPIKey     string `toml:"gemini_api_key"`
	GeminiModel      string `toml:"gemini_model"`
	OpenRouterAPIKey string `toml:"openrouter_api_key"`
	BaseURL          string `toml:"base_url"`
	Model            string `toml:"model"`
	Referer          string `toml:"referer"`
	Title            string `toml:"title"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// Render configures the ffmpeg karaoke video encoder.
type Render struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	Background   string `toml:"background"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	VideoCodec   string `toml:"video_codec"`
	AudioCodec   string `toml:"audio_codec"`
	Preset       string `toml:"preset"`
}

// Storage configures Cloudflare R2 (S3 API) publishing of rendered videos.
type Storage struct {
	AccountID       string `toml:"account_id"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Bucket          string `toml:"bucket"`
	PublicURL       string `toml:"public_url"`
	Endpoint        string `toml:"endpoint"`
	UseSSL          bool   `toml:"use_ssl"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the karaoke daemon.
//
// Configuration sections by subsystem:
//   - Paths: work, data and log directories plus the API bind address
//   - Workflow: worker count, polling intervals and heartbeats
//   - Download: yt-dlp settings for URL sources
//   - Separation: demucs model selection
//   - Transcription: WhisperX model and alignment settings
//   - Translation: Gemini or OpenRouter annotation back end
//   - Render: ffmpeg canvas and codecs
//   - Storage: R2 bucket credentials
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workflow      Workflow      `toml:"workflow"`
	Download      Download      `toml:"download"`
	Separation    Separation    `toml:"separation"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Render        Render        `toml:"render"`
	Storage       Storage       `toml:"storage"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/karaoke/config.toml")
}

// Load locates, parses, and validates a configuration file. Environment
// overrides are applied after the file is decoded. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("karaoke.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JobDir returns the per-job scratch directory inside the work dir.
func (c *Config) JobDir(jobID string) string {
	return filepath.Join(c.Paths.WorkDir, "jobs", jobID)
}

// WhisperXBinary returns the launcher used to run WhisperX.
func (c *Config) WhisperXBinary() string {
	return "uvx"
}

// StorageConfigured reports whether R2 credentials are complete enough to attempt uploads.
func (c *Config) StorageConfigured() bool {
	s := c.Storage
	return strings.TrimSpace(s.Endpoint) != "" &&
		strings.TrimSpace(s.AccessKeyID) != "" &&
		strings.TrimSpace(s.SecretAccessKey) != "" &&
		strings.TrimSpace(s.Bucket) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
