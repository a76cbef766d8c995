package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"karaoke/internal/logging"
	"karaoke/internal/stage"
)

// resolveSource fills SourcePath. A URL or local path goes through the
// mode's downloader. An empty source switches the job to mock mode and uses
// the sample asset, which may itself be missing.
func (o *Orchestrator) resolveSource(ctx context.Context, sc stage.Context) (stage.Context, error) {
	dir := filepath.Join(o.jobDir(sc.JobID), "source")
	source := strings.TrimSpace(sc.Source)
	if source == "" {
		if sc.Mode != stage.ModeMock {
			logging.WarnWithContext(logging.WithContext(ctx, o.logger), "no media source; switching to mock mode", "mode_forced",
				logging.String(logging.FieldErrorHint, "submit a mediaUrl to process real audio"),
				logging.String(logging.FieldImpact, "job renders the sample asset with stub lyrics"),
			)
		}
		sc.Mode = stage.ModeMock
		path, err := o.mock.Downloader.Fetch(ctx, "", dir)
		if err != nil {
			return sc, err
		}
		sc.SourcePath = path
		return sc, nil
	}
	path, err := o.strategies(sc).Downloader.Fetch(ctx, source, dir)
	if err != nil {
		return sc, err
	}
	sc.SourcePath = path
	return sc, nil
}
