package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"karaoke/internal/lyrics"
	"karaoke/internal/services/ffmpeg"
	"karaoke/internal/stage"
	"karaoke/internal/subtitles"
	"karaoke/internal/textutil"
)

// Stage names used in logs, metrics and the context.
const (
	StageSeparation    = "separation"
	StageTranscription = "transcription"
	StageAnnotation    = "annotation"
	StageRender        = "render"
)

// Checkpoint describes one step's ledger progress contract.
type Checkpoint struct {
	Stage string `json:"stage"`
	Start int    `json:"start"`
	Done  int    `json:"done"`
	Fatal bool   `json:"fatal"`
}

type step struct {
	Checkpoint
	startDetail string
	doneDetail  string
	// final steps complete the job instead of recording Done.
	final bool
	run   func(o *Orchestrator, ctx context.Context, sc stage.Context) (stage.Context, error)
}

var chain = []step{
	{
		Checkpoint:  Checkpoint{Stage: StageSeparation, Start: 10, Done: 30, Fatal: true},
		startDetail: "Separating vocals from instrumental",
		doneDetail:  "Audio separated",
		run:         (*Orchestrator).separate,
	},
	{
		Checkpoint:  Checkpoint{Stage: StageTranscription, Start: 40, Done: 50, Fatal: true},
		startDetail: "Transcribing and aligning lyrics",
		doneDetail:  "Lyrics aligned",
		run:         (*Orchestrator).transcribe,
	},
	{
		Checkpoint:  Checkpoint{Stage: StageAnnotation, Start: 60, Done: 75, Fatal: false},
		startDetail: "Translating and romanizing lyrics",
		doneDetail:  "Lyrics annotated",
		run:         (*Orchestrator).annotate,
	},
	{
		Checkpoint:  Checkpoint{Stage: StageRender, Start: 80, Done: 100, Fatal: true},
		startDetail: "Rendering karaoke video",
		doneDetail:  "Completed",
		final:       true,
		run:         (*Orchestrator).render,
	},
}

// Checkpoints returns the chain's progress contract in execution order.
func Checkpoints() []Checkpoint {
	out := make([]Checkpoint, len(chain))
	for i, st := range chain {
		out[i] = st.Checkpoint
	}
	return out
}

func (o *Orchestrator) separate(ctx context.Context, sc stage.Context) (stage.Context, error) {
	sc, err := o.resolveSource(ctx, sc)
	if err != nil {
		return sc, stageFailure(StageSeparation, ErrDownload, err)
	}
	stems, err := o.strategies(sc).Separator.Separate(ctx, sc.SourcePath, filepath.Join(o.jobDir(sc.JobID), "separated"))
	if err != nil {
		return sc, stageFailure(StageSeparation, ErrSeparation, err)
	}
	sc.VocalsPath = stems.Vocals
	sc.InstrumentalPath = stems.Instrumental
	return sc, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, sc stage.Context) (stage.Context, error) {
	dir := o.jobDir(sc.JobID)
	transcript, err := o.strategies(sc).Transcriber.Transcribe(ctx, sc.VocalsPath, filepath.Join(dir, "transcript"), sc.SourceLanguage)
	if err != nil {
		return sc, stageFailure(StageTranscription, ErrTranscription, err)
	}
	sc.Lyrics = &transcript
	o.saveLyrics(ctx, sc)
	return sc, nil
}

func (o *Orchestrator) annotate(ctx context.Context, sc stage.Context) (stage.Context, error) {
	if sc.Lyrics == nil || len(sc.Lyrics.Segments) == 0 {
		return sc, nil
	}
	annotated, err := o.strategies(sc).Annotator.Annotate(ctx, sc.Lyrics.Segments, sc.TargetLanguage)
	if err != nil {
		return sc, stageFailure(StageAnnotation, ErrTranslation, err)
	}
	updated := lyrics.Transcript{Segments: annotated, Language: sc.Lyrics.Language}
	sc.Lyrics = &updated
	o.saveLyrics(ctx, sc)
	return sc, nil
}

func (o *Orchestrator) render(ctx context.Context, sc stage.Context) (stage.Context, error) {
	template, err := subtitles.ParseTemplate(sc.Template)
	if err != nil {
		return sc, stageFailure(StageRender, ErrRender, err)
	}
	var segments []lyrics.Segment
	if sc.Lyrics != nil {
		segments = template.Apply(sc.Lyrics.Segments)
	}

	dir := o.jobDir(sc.JobID)
	subtitlePath := filepath.Join(dir, "lyrics.ass")
	if err := subtitles.WriteFile(subtitlePath, segments); err != nil {
		return sc, stageFailure(StageRender, ErrRender, fmt.Errorf("write subtitles: %w", err))
	}
	sc.SubtitlePath = subtitlePath

	strategies := o.strategies(sc)
	video, err := strategies.Renderer.Render(ctx, ffmpeg.Request{
		Instrumental: sc.InstrumentalPath,
		Subtitles:    subtitlePath,
		Output:       filepath.Join(dir, OutputFileName(sc.Artist, sc.Title)),
	})
	if err != nil {
		return sc, stageFailure(StageRender, ErrRender, err)
	}
	sc.VideoPath = video
	sc.OutputPath, sc.Published = strategies.Publisher.Publish(ctx, video, sc.JobID)
	return sc, nil
}

// OutputFileName derives the video file name from the song metadata.
func OutputFileName(artist, title string) string {
	parts := make([]string, 0, 2)
	for _, value := range []string{artist, title} {
		if clean := textutil.SanitizeFileName(value); clean != "" {
			parts = append(parts, clean)
		}
	}
	if len(parts) == 0 {
		return "karaoke.mp4"
	}
	return strings.Join(parts, " - ") + ".mp4"
}
