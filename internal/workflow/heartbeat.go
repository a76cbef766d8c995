package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/services"
)

// HeartbeatMonitor refreshes ticket heartbeats and fails jobs whose worker
// went silent.
type HeartbeatMonitor struct {
	store             *queue.Store
	ledger            Ledger
	logger            *slog.Logger
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *queue.Store, jobs Ledger, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		store:             store,
		ledger:            jobs,
		logger:            logger,
		heartbeatInterval: interval,
		heartbeatTimeout:  timeout,
	}
}

// Reclaim closes tickets whose heartbeat predates cutoff and marks their jobs
// FAILED. It returns the affected job ids.
func (h *HeartbeatMonitor) Reclaim(ctx context.Context, cutoff time.Time) ([]string, error) {
	jobIDs, err := h.store.ReclaimStale(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, jobID := range jobIDs {
		jobCtx := services.WithJobID(ctx, jobID)
		logger := logging.WithContext(jobCtx, h.logger)
		_, err := h.ledger.MergeUpdate(jobCtx, jobID, ledger.Failed(LostWorkerMessage))
		switch {
		case err == nil:
			logging.WarnWithContext(logger, "reclaimed stale job", "job_reclaimed",
				logging.String(logging.FieldErrorHint, "resubmit the job"),
				logging.String(logging.FieldImpact, "job marked failed"),
			)
		case errors.Is(err, ledger.ErrTerminal), errors.Is(err, ledger.ErrNotFound):
			logger.Debug("stale ticket had no live job", logging.Error(err))
		default:
			return jobIDs, err
		}
	}
	return jobIDs, nil
}

// ReclaimLoop periodically reclaims tickets older than the heartbeat timeout.
func (h *HeartbeatMonitor) ReclaimLoop(ctx context.Context) {
	if h.heartbeatTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(h.heartbeatTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := h.Reclaim(ctx, time.Now().Add(-h.heartbeatTimeout)); err != nil && !errors.Is(err, context.Canceled) {
				logging.WarnWithContext(h.logger, "reclaim stale tickets failed", "heartbeat_reclaim_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check queue database access"),
					logging.String(logging.FieldImpact, "jobs of dead workers stay PROCESSING"),
				)
			}
		}
	}
}

// Loop refreshes a ticket's heartbeat until ctx is cancelled.
func (h *HeartbeatMonitor) Loop(ctx context.Context, ticketID int64, worker string) {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, logging.NewComponentLogger(h.logger, "workflow-heartbeat"))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.Heartbeat(ctx, ticketID, worker); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
