package testsupport

import (
	"path/filepath"
	"testing"

	"karaoke/internal/config"
)

// ConfigOption adjusts the config built by NewConfig.
type ConfigOption func(testing.TB, *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory, with short
// workflow intervals and no mock asset. Options apply in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MockAsset = ""
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 5

	for _, opt := range opts {
		opt(t, &cfg)
	}
	return &cfg
}

// WithMockAsset writes a placeholder demo track and makes it the mock asset.
func WithMockAsset() ConfigOption {
	return func(t testing.TB, cfg *config.Config) {
		cfg.Paths.MockAsset = WriteFile(t, filepath.Join(BaseDir(cfg), "assets", "sample.mp3"), 1024)
	}
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) ConfigOption {
	return func(_ testing.TB, cfg *config.Config) { cfg.Workflow.Workers = n }
}

// BaseDir returns the temp directory holding the config's paths.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
