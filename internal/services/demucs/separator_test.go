package demucs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"karaoke/internal/services"
)

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "My Song.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestSeparateReturnsStems(t *testing.T) {
	input := writeInput(t)
	out := t.TempDir()
	var gotArgs []string
	sep := New(Config{Device: "cpu"}, WithRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "demucs" {
			t.Fatalf("unexpected binary %q", name)
		}
		gotArgs = args
		dir := filepath.Join(out, "htdemucs", "My Song")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		for _, f := range []string{"vocals.wav", "no_vocals.wav"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("wav"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}))

	stems, err := sep.Separate(context.Background(), input, out)
	if err != nil {
		t.Fatalf("Separate failed: %v", err)
	}
	if stems.Vocals != filepath.Join(out, "htdemucs", "My Song", "vocals.wav") {
		t.Fatalf("unexpected vocals path %q", stems.Vocals)
	}
	if stems.Instrumental != filepath.Join(out, "htdemucs", "My Song", "no_vocals.wav") {
		t.Fatalf("unexpected instrumental path %q", stems.Instrumental)
	}
	want := []string{"-n", "htdemucs", "--two-stems=vocals", "-o", out, "-d", "cpu", input}
	if !slices.Equal(gotArgs, want) {
		t.Fatalf("unexpected args %v", gotArgs)
	}
}

func TestSeparateFailsWhenStemsMissing(t *testing.T) {
	input := writeInput(t)
	sep := New(Config{}, WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, nil
	}))
	_, err := sep.Separate(context.Background(), input, t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestSeparateWrapsRunnerError(t *testing.T) {
	input := writeInput(t)
	sep := New(Config{}, WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("CUDA out of memory")
	}))
	_, err := sep.Separate(context.Background(), input, t.TempDir())
	if err == nil || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected wrapped tool error, got %v", err)
	}
}

func TestSeparateRequiresInput(t *testing.T) {
	sep := New(Config{})
	if _, err := sep.Separate(context.Background(), "", t.TempDir()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := sep.Separate(context.Background(), "/missing.wav", t.TempDir()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
