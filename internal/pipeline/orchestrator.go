package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/services"
	"karaoke/internal/stage"
)

// Ledger is the slice of the ledger store the chain writes to.
type Ledger interface {
	MergeUpdate(ctx context.Context, id string, p ledger.Partial) (ledger.Record, error)
}

// Observer receives timing events for metrics.
type Observer interface {
	StageStarted(stage string)
	StageFinished(stage, outcome string, elapsed time.Duration)
	JobFinished(status string, elapsed time.Duration)
}

// Stage outcomes reported to the Observer.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
)

// Options configures an Orchestrator.
type Options struct {
	Ledger Ledger
	// Real is used for normal-mode jobs. Left empty, normal jobs use Mock.
	Real Strategies
	// Mock is used for mock-mode jobs and for jobs without a source.
	Mock     Strategies
	JobDir   func(jobID string) string
	Logger   *slog.Logger
	Observer Observer
}

// Orchestrator runs the four-step chain and records progress in the ledger.
type Orchestrator struct {
	ledger   Ledger
	real     Strategies
	mock     Strategies
	jobDir   func(string) string
	logger   *slog.Logger
	observer Observer
}

// New validates opts and builds an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Ledger == nil {
		return nil, errors.New("pipeline: ledger required")
	}
	if opts.JobDir == nil {
		return nil, errors.New("pipeline: job directory resolver required")
	}
	if err := opts.Mock.validate(); err != nil {
		return nil, fmt.Errorf("pipeline: mock strategies: %w", err)
	}
	realSet := opts.Real
	if realSet.empty() {
		realSet = opts.Mock
	} else if err := realSet.validate(); err != nil {
		return nil, fmt.Errorf("pipeline: strategies: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Orchestrator{
		ledger:   opts.Ledger,
		real:     realSet,
		mock:     opts.Mock,
		jobDir:   opts.JobDir,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		observer: observer,
	}, nil
}

// Health reports readiness of the normal-mode collaborators.
func (o *Orchestrator) Health(ctx context.Context) []stage.Health {
	return o.real.Health(ctx)
}

func (o *Orchestrator) strategies(sc stage.Context) Strategies {
	if sc.Mock() {
		return o.mock
	}
	return o.real
}

// Run executes the chain for one job. The ledger record for sc.JobID must
// already exist. The returned error is nil when the job completed; the job's
// terminal state is always written to the ledger before Run returns unless
// the ledger itself is unavailable.
func (o *Orchestrator) Run(ctx context.Context, sc stage.Context) (stage.Context, error) {
	started := time.Now()
	ctx = services.WithJobID(ctx, sc.JobID)
	if err := os.MkdirAll(o.jobDir(sc.JobID), 0o755); err != nil {
		return sc, o.fail(ctx, sc, "", fmt.Errorf("create job directory: %w", err), started)
	}

	for _, st := range chain {
		stageCtx := services.WithStage(ctx, st.Stage)
		logger := logging.WithContext(stageCtx, o.logger)

		if _, err := o.ledger.MergeUpdate(stageCtx, sc.JobID, ledger.Processing(st.Start, st.startDetail)); err != nil {
			return sc, o.ledgerFailure(stageCtx, st.Stage, err)
		}
		logger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.Int(logging.FieldProgress, st.Start),
			logging.String("mode", string(sc.Mode)),
		)
		o.observer.StageStarted(st.Stage)
		stageStart := time.Now()

		next, err := st.run(o, stageCtx, sc)
		elapsed := time.Since(stageStart)
		if err != nil {
			if ctx.Err() != nil || st.Fatal {
				o.observer.StageFinished(st.Stage, OutcomeFailure, elapsed)
				return next, o.fail(stageCtx, next, st.Stage, err, started)
			}
			o.observer.StageFinished(st.Stage, OutcomeDegraded, elapsed)
			attrs := append(logging.ErrorAttrs(err),
				logging.String(logging.FieldErrorHint, "check translation provider credentials and quota"),
				logging.String(logging.FieldImpact, "video renders with original lyrics only"),
				logging.Duration("elapsed", elapsed),
			)
			logging.WarnWithContext(logger, "stage degraded; continuing without its output", "stage_degraded", attrs...)
			sc = next
			continue
		}
		sc = next

		if st.final {
			result := o.result(sc)
			if _, err := o.ledger.MergeUpdate(stageCtx, sc.JobID, ledger.Completed(result, sc.OutputPath)); err != nil {
				return sc, o.ledgerFailure(stageCtx, st.Stage, err)
			}
		} else if _, err := o.ledger.MergeUpdate(stageCtx, sc.JobID, ledger.Advance(st.Done, st.doneDetail)); err != nil {
			return sc, o.ledgerFailure(stageCtx, st.Stage, err)
		}
		o.observer.StageFinished(st.Stage, OutcomeSuccess, elapsed)
		logger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Int(logging.FieldProgress, st.Done),
			logging.Duration("elapsed", elapsed),
		)
	}

	total := time.Since(started)
	o.observer.JobFinished(string(ledger.StatusCompleted), total)
	logging.WithContext(ctx, o.logger).Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("output", sc.OutputPath),
		logging.Bool("published", sc.Published),
		logging.Duration("elapsed", total),
	)
	return sc, nil
}

func (o *Orchestrator) result(sc stage.Context) ledger.Result {
	result := ledger.Result{
		OutputPath:   sc.VideoPath,
		SubtitlePath: sc.SubtitlePath,
		Published:    sc.Published,
	}
	if sc.Lyrics != nil {
		result.Language = sc.Lyrics.Language
		result.Segments = len(sc.Lyrics.Segments)
		result.Annotated = sc.Lyrics.Annotated()
	}
	return result
}

// fail records the terminal failure. The write ignores cancellation of ctx so
// a shutdown still leaves the job FAILED.
func (o *Orchestrator) fail(ctx context.Context, sc stage.Context, stageName string, cause error, started time.Time) error {
	logger := logging.WithContext(ctx, o.logger)
	attrs := append(logging.ErrorAttrs(cause),
		logging.String(logging.FieldStage, stageName),
		logging.String(logging.FieldErrorHint, failureHint(cause)),
	)
	logging.ErrorWithContext(logger, "job failed", "job_failed", attrs...)
	o.observer.JobFinished(string(ledger.StatusFailed), time.Since(started))
	if _, err := o.ledger.MergeUpdate(context.WithoutCancel(ctx), sc.JobID, ledger.Failed(cause.Error())); err != nil {
		return errors.Join(cause, fmt.Errorf("record failure: %w", err))
	}
	return cause
}

func (o *Orchestrator) ledgerFailure(ctx context.Context, stageName string, err error) error {
	logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "ledger update failed; aborting job", "ledger_failure",
		logging.Error(err),
		logging.String(logging.FieldStage, stageName),
		logging.String(logging.FieldErrorHint, "check the database file and disk space"),
	)
	return fmt.Errorf("ledger update: %w", err)
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "job interrupted; resubmit it"
	case errors.Is(err, ErrDownload):
		return "verify the media URL and that yt-dlp is installed"
	case errors.Is(err, ErrSeparation):
		return "verify demucs is installed and the source is valid audio"
	case errors.Is(err, ErrTranscription):
		return "verify uvx can launch whisperx and the model is available"
	case errors.Is(err, ErrRender):
		return "verify ffmpeg is installed with libass support"
	default:
		return "check logs for details"
	}
}

func (s Strategies) empty() bool {
	return s.Downloader == nil && s.Separator == nil && s.Transcriber == nil &&
		s.Annotator == nil && s.Renderer == nil && s.Publisher == nil
}

func (s Strategies) validate() error {
	switch {
	case s.Downloader == nil:
		return errors.New("downloader missing")
	case s.Separator == nil:
		return errors.New("separator missing")
	case s.Transcriber == nil:
		return errors.New("transcriber missing")
	case s.Annotator == nil:
		return errors.New("annotator missing")
	case s.Renderer == nil:
		return errors.New("renderer missing")
	case s.Publisher == nil:
		return errors.New("publisher missing")
	}
	return nil
}

func (o *Orchestrator) saveLyrics(ctx context.Context, sc stage.Context) {
	if sc.Lyrics == nil {
		return
	}
	path := filepath.Join(o.jobDir(sc.JobID), "lyrics.json")
	if err := sc.Lyrics.Save(path); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "failed to persist lyrics", "lyrics_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check work directory permissions"),
			logging.String(logging.FieldImpact, "lyrics are not available for offline subtitle regeneration"),
		)
	}
}

type nopObserver struct{}

func (nopObserver) StageStarted(string)                         {}
func (nopObserver) StageFinished(string, string, time.Duration) {}
func (nopObserver) JobFinished(string, time.Duration)           {}
