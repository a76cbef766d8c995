package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"

	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/services"
	"karaoke/internal/stage"
)

func (m *Manager) runWorker(ctx context.Context, name string) {
	ctx = services.WithWorker(ctx, name)
	logger := logging.WithContext(ctx, m.logger)
	idle := jitterbug.New(m.pollInterval, &jitterbug.Norm{Stdev: m.pollInterval / 10})
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ticket, err := m.store.Claim(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.handleClaimError(ctx, logger, err)
			continue
		}
		if ticket == nil {
			select {
			case <-ctx.Done():
				return
			case <-idle.C:
			}
			continue
		}
		m.process(ctx, name, ticket)
	}
}

func (m *Manager) handleClaimError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logging.ErrorWithContext(logger, "failed to claim queue ticket", "queue_claim_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	select {
	case <-ctx.Done():
	case <-time.After(m.retryInterval):
	}
}

// process runs one ticket to completion. The chain ignores cancellation of
// ctx so shutdown never abandons a job between stages.
func (m *Manager) process(ctx context.Context, worker string, ticket *queue.Ticket) {
	jobCtx := services.WithRequestID(services.WithJobID(context.WithoutCancel(ctx), ticket.JobID), uuid.NewString())
	logger := logging.WithContext(jobCtx, m.logger)
	m.trackStart(worker, ticket.JobID)
	defer m.trackDone(worker)

	logger.Info("job claimed",
		logging.String(logging.FieldEventType, "job_claimed"),
		logging.String("mode", ticket.Payload.Mode),
	)

	hbCtx, stopHeartbeat := context.WithCancel(jobCtx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.heartbeat.Loop(hbCtx, ticket.ID, worker)
	}()

	_, runErr := m.runner.Run(jobCtx, ContextFor(ticket))
	stopHeartbeat()
	<-done

	if runErr != nil {
		m.setLastError(runErr)
	}
	if err := m.store.Finish(jobCtx, ticket.ID, worker); err != nil {
		if errors.Is(err, queue.ErrNotClaimed) {
			logging.WarnWithContext(logger, "ticket reclaimed while the job ran", "ticket_lost",
				logging.String(logging.FieldErrorHint, "raise workflow.heartbeat_timeout"),
				logging.String(logging.FieldImpact, "job was marked failed by the stale reclaimer"),
			)
			return
		}
		m.setLastError(err)
		logging.ErrorWithContext(logger, "failed to close queue ticket", "queue_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}
}

// ContextFor builds the initial chain context for a ticket. Jobs without a
// media URL run in mock mode.
func ContextFor(ticket *queue.Ticket) stage.Context {
	p := ticket.Payload
	mode := stage.ParseMode(p.Mode)
	if p.MediaURL == "" {
		mode = stage.ModeMock
	}
	return stage.Context{
		JobID:          ticket.JobID,
		Mode:           mode,
		Title:          p.Title,
		Artist:         p.Artist,
		Source:         p.MediaURL,
		SourceLanguage: p.SourceLanguage,
		TargetLanguage: p.TargetLanguage,
		Template:       p.Template,
	}
}
