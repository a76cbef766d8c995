package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	present := filepath.Join(t.TempDir(), "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	results := CheckBinaries([]Requirement{
		{Name: "present", Command: " " + present + " "},
		{Name: "missing", Command: "clearly-not-present-binary"},
		{Name: "blank"},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if got := results[0]; !got.Available || got.Path != present || got.Command != present || got.Detail != "" {
		t.Fatalf("unexpected status for present binary: %+v", got)
	}
	if got := results[1]; got.Available || got.Path != "" || !strings.Contains(got.Detail, "not found") {
		t.Fatalf("unexpected status for missing binary: %+v", got)
	}
	if got := results[2]; got.Available || got.Detail != "command not configured" {
		t.Fatalf("unexpected status for blank command: %+v", got)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Separation.Binary = "/opt/demucs/bin/demucs"

	reqs := Requirements(&cfg)
	names := make(map[string]Requirement, len(reqs))
	for _, req := range reqs {
		names[req.Name] = req
	}
	for _, name := range []string{"yt-dlp", "demucs", "whisperx", "ffmpeg"} {
		if _, ok := names[name]; !ok {
			t.Fatalf("missing requirement %q in %+v", name, reqs)
		}
	}
	if names["demucs"].Command != "/opt/demucs/bin/demucs" {
		t.Fatalf("demucs command = %q", names["demucs"].Command)
	}
	if !names["yt-dlp"].Optional {
		t.Fatal("yt-dlp should be optional; local sources do not need it")
	}
}

func TestMissingSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Requirement: Requirement{Name: "ffmpeg"}, Available: true},
		{Requirement: Requirement{Name: "demucs"}},
		{Requirement: Requirement{Name: "yt-dlp", Optional: true}},
	}
	got := Missing(statuses)
	if len(got) != 1 || got[0] != "demucs" {
		t.Fatalf("Missing = %v, want [demucs]", got)
	}
}
