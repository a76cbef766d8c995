package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"karaoke/internal/annotation"
	"karaoke/internal/fileutil"
	"karaoke/internal/lyrics"
	"karaoke/internal/services/demucs"
	"karaoke/internal/services/ffmpeg"
	"karaoke/internal/services/objectstore"
	"karaoke/internal/stage"
)

// Downloader resolves a source into a local media file.
type Downloader interface {
	Fetch(ctx context.Context, source, destDir string) (string, error)
}

// Separator splits media into vocal and instrumental stems.
type Separator interface {
	Separate(ctx context.Context, input, outDir string) (demucs.Stems, error)
}

// Transcriber produces word-aligned lyrics from a vocal stem.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir, language string) (lyrics.Transcript, error)
}

// Renderer encodes the final video.
type Renderer interface {
	Render(ctx context.Context, req ffmpeg.Request) (string, error)
}

// Strategies is one complete set of collaborators for the chain.
type Strategies struct {
	Downloader  Downloader
	Separator   Separator
	Transcriber Transcriber
	Annotator   annotation.Annotator
	Renderer    Renderer
	Publisher   objectstore.Publisher
}

// MockStrategies returns deterministic collaborators that need no external
// tools. asset is the bundled sample media; it may be empty.
func MockStrategies(asset string) Strategies {
	return Strategies{
		Downloader:  MockSource{Asset: asset},
		Separator:   MockSeparator{},
		Transcriber: MockTranscriber{},
		Annotator:   annotation.Mock{},
		Renderer:    ffmpeg.DryRun{},
		Publisher:   objectstore.Local{},
	}
}

// Health collects readiness from every collaborator that reports it.
func (s Strategies) Health(ctx context.Context) []stage.Health {
	return stage.Collect(ctx, s.Downloader, s.Separator, s.Transcriber, s.Annotator, s.Renderer, s.Publisher)
}

// MockSource keeps an existing local source and otherwise substitutes the
// sample asset, copied into the job directory. With neither available it
// returns an empty path.
type MockSource struct {
	Asset string
}

// Fetch implements Downloader.
func (m MockSource) Fetch(_ context.Context, source, destDir string) (string, error) {
	if isLocalFile(source) {
		return source, nil
	}
	if !isLocalFile(m.Asset) {
		return "", nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, filepath.Base(m.Asset))
	if err := fileutil.CopyFile(m.Asset, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// MockSeparator reuses the input for both stems.
type MockSeparator struct{}

// Separate implements Separator.
func (MockSeparator) Separate(_ context.Context, input, _ string) (demucs.Stems, error) {
	return demucs.Stems{Vocals: input, Instrumental: input}, nil
}

// MockTranscriber returns a fixed two-word transcript.
type MockTranscriber struct{}

// Transcribe implements Transcriber.
func (MockTranscriber) Transcribe(context.Context, string, string, string) (lyrics.Transcript, error) {
	return lyrics.Transcript{
		Language: "en",
		Segments: []lyrics.Segment{{
			Start: 0.0,
			End:   2.5,
			Text:  "Hello world",
			Words: []lyrics.Word{
				{Word: "Hello", Start: 0.0, End: 1.2, Score: 0.9},
				{Word: "world", Start: 1.2, End: 2.5, Score: 0.8},
			},
		}},
	}, nil
}

func isLocalFile(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
