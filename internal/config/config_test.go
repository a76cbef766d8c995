package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"karaoke/internal/config"
)

func clearDeploymentEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TEMP_DIR", "GEMINI_API_KEY", "OPENROUTER_API_KEY", "HF_TOKEN",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_URL",
		"KARAOKE_API_BIND", "KARAOKE_API_TOKEN", "KARAOKE_LOG_LEVEL", "KARAOKE_LOG_FORMAT",
		"KARAOKE_WORKERS", "KARAOKE_TRANSLATION_PROVIDER",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearDeploymentEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.WorkDir != "/tmp/karaoke-gen" {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "karaoke")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Storage.Bucket != "karaoke-assets" {
		t.Fatalf("unexpected bucket: %q", cfg.Storage.Bucket)
	}
	if cfg.Translation.TargetLanguage != "ko" {
		t.Fatalf("unexpected target language: %q", cfg.Translation.TargetLanguage)
	}
	if cfg.Translation.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected gemini model: %q", cfg.Translation.GeminiModel)
	}
	if cfg.Separation.Model != "htdemucs" {
		t.Fatalf("unexpected demucs model: %q", cfg.Separation.Model)
	}
	if cfg.Transcription.Model != "large-v3" {
		t.Fatalf("unexpected whisperx model: %q", cfg.Transcription.Model)
	}
	if cfg.Workflow.Workers != 2 {
		t.Fatalf("unexpected worker count: %d", cfg.Workflow.Workers)
	}
	if cfg.StorageConfigured() {
		t.Fatal("expected storage to be unconfigured by default")
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearDeploymentEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "karaoke.toml")

	type payload struct {
		Paths struct {
			WorkDir string `toml:"work_dir"`
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Workflow struct {
			Workers           int `toml:"workers"`
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
		} `toml:"workflow"`
		Translation struct {
			TargetLanguage string `toml:"target_language"`
		} `toml:"translation"`
	}
	custom := payload{}
	custom.Paths.WorkDir = filepath.Join(tempDir, "work")
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Workflow.Workers = 4
	custom.Workflow.HeartbeatInterval = 20
	custom.Workflow.HeartbeatTimeout = 200
	custom.Translation.TargetLanguage = "ja"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.WorkDir != custom.Paths.WorkDir {
		t.Fatalf("expected work dir from file, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Workflow.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Workflow.Workers)
	}
	if cfg.Workflow.HeartbeatTimeout != 200 {
		t.Fatalf("expected heartbeat timeout 200, got %d", cfg.Workflow.HeartbeatTimeout)
	}
	if cfg.Translation.TargetLanguage != "ja" {
		t.Fatalf("expected target language ja, got %q", cfg.Translation.TargetLanguage)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	clearDeploymentEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "karaoke.toml")
	contents := `
[paths]
work_dir = "/srv/file-work"

[translation]
gemini_api_key = "file-gemini"

[storage]
bucket = "file-bucket"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	envWork := filepath.Join(tempDir, "env-work")
	t.Setenv("TEMP_DIR", envWork)
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "ak")
	t.Setenv("R2_SECRET_ACCESS_KEY", "sk")
	t.Setenv("R2_PUBLIC_URL", "https://pub.example.dev/")
	t.Setenv("KARAOKE_WORKERS", "3")
	t.Setenv("KARAOKE_LOG_FORMAT", "JSON")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.WorkDir != envWork {
		t.Errorf("expected work dir from TEMP_DIR, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Translation.GeminiAPIKey != "env-gemini" {
		t.Errorf("expected gemini key from env, got %q", cfg.Translation.GeminiAPIKey)
	}
	if cfg.Storage.Bucket != "file-bucket" {
		t.Errorf("expected bucket from file, got %q", cfg.Storage.Bucket)
	}
	if cfg.Storage.Endpoint != "acct.r2.cloudflarestorage.com" {
		t.Errorf("unexpected derived endpoint %q", cfg.Storage.Endpoint)
	}
	if cfg.Storage.PublicURL != "https://pub.example.dev" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Storage.PublicURL)
	}
	if !cfg.StorageConfigured() {
		t.Error("expected storage to be configured from env")
	}
	if cfg.Workflow.Workers != 3 {
		t.Errorf("expected 3 workers from env, got %d", cfg.Workflow.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_gemini_api_key_here") {
		t.Fatalf("sample config missing placeholder Gemini key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Paths.WorkDir != "/tmp/karaoke-gen" {
		t.Fatalf("unexpected sample work dir %q", cfg.Paths.WorkDir)
	}
	if cfg.Storage.Bucket != "karaoke-assets" {
		t.Fatalf("unexpected sample bucket %q", cfg.Storage.Bucket)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.Workers = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative workers")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for heartbeat interval")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when timeout <= interval")
	}

	cfg = config.Default()
	cfg.Translation.Provider = "deepl"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown translation provider")
	}

	cfg = config.Default()
	cfg.Translation.TargetLanguage = "not a language"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid target language")
	}

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
