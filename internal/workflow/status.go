package workflow

import (
	"context"
	"sort"

	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/stage"
)

// ActiveJob is a job currently held by a worker.
type ActiveJob struct {
	Worker string `json:"worker"`
	JobID  string `json:"job_id"`
}

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool           `json:"running"`
	Workers     int            `json:"workers"`
	Active      []ActiveJob    `json:"active"`
	LastError   string         `json:"last_error,omitempty"`
	LastJob     string         `json:"last_job,omitempty"`
	QueueStats  queue.Stats    `json:"queue"`
	StageHealth []stage.Health `json:"stage_health"`
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{Running: m.running, Workers: m.workers, LastJob: m.lastJob}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	for worker, jobID := range m.active {
		summary.Active = append(summary.Active, ActiveJob{Worker: worker, JobID: jobID})
	}
	m.mu.RUnlock()
	sort.Slice(summary.Active, func(i, j int) bool { return summary.Active[i].Worker < summary.Active[j].Worker })

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue stats", logging.Error(err))
	}
	summary.QueueStats = stats
	if m.runner != nil {
		summary.StageHealth = m.runner.Health(ctx)
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) trackStart(worker, jobID string) {
	m.mu.Lock()
	m.active[worker] = jobID
	m.lastJob = jobID
	m.mu.Unlock()
}

func (m *Manager) trackDone(worker string) {
	m.mu.Lock()
	delete(m.active, worker)
	m.mu.Unlock()
}
