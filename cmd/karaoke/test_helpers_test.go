package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/api"
	"karaoke/internal/config"
	"karaoke/internal/daemon"
	"karaoke/internal/ledger"
	"karaoke/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	jobs       *ledger.Store
	server     *httptest.Server
	configPath string
	token      string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIToken = "cli-token"
	configPath := filepath.Join(testsupport.BaseDir(cfg), "karaoke.toml")
	writeTestConfig(t, configPath, cfg)

	jobs, tickets := testsupport.MustOpenStores(t, cfg)
	svc := api.NewJobService(jobs, tickets, nil)
	router := daemon.NewRouter(daemon.RouterOptions{
		Jobs:  svc,
		Token: cfg.Paths.APIToken,
		Status: func(ctx context.Context) api.DaemonStatus {
			counts, _ := jobs.Counts(ctx)
			out := make(map[string]int, len(counts))
			for status, n := range counts {
				out[string(status)] = n
			}
			return api.DaemonStatus{PID: 4242, DatabasePath: "karaoke.db", Counts: out}
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &cliTestEnv{
		cfg:        cfg,
		jobs:       jobs,
		server:     srv,
		configPath: configPath,
		token:      cfg.Paths.APIToken,
	}
}

// run executes the CLI against the test daemon with the configured token.
func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	flags := []string{"--addr", e.server.URL, "--token", e.token}
	return runCLI(t, append(flags, args...), e.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nwork_dir = %q\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\napi_token = %q\n",
		cfg.Paths.WorkDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Paths.APIToken,
	)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
