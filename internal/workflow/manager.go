package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"karaoke/internal/config"
	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
	"karaoke/internal/stage"
)

// LostWorkerMessage is recorded on jobs whose worker stopped heartbeating.
const LostWorkerMessage = "worker lost before completion"

// Runner executes the pipeline chain for one job.
type Runner interface {
	Run(ctx context.Context, sc stage.Context) (stage.Context, error)
	Health(ctx context.Context) []stage.Health
}

// Ledger is the slice of the job ledger the manager writes to.
type Ledger interface {
	MergeUpdate(ctx context.Context, id string, p ledger.Partial) (ledger.Record, error)
}

// Manager coordinates queue processing across a pool of workers.
type Manager struct {
	store   *queue.Store
	ledger  Ledger
	runner  Runner
	logger  *slog.Logger
	workers int

	pollInterval  time.Duration
	retryInterval time.Duration
	heartbeat     *HeartbeatMonitor

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group
	lastErr error
	lastJob string
	active  map[string]string
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPollInterval overrides the idle polling interval.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// NewManager constructs a workflow manager from the workflow config section.
func NewManager(cfg *config.Config, store *queue.Store, jobs Ledger, runner Runner, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	workers := cfg.Workflow.Workers
	if workers <= 0 {
		workers = 1
	}
	m := &Manager{
		store:         store,
		ledger:        jobs,
		runner:        runner,
		logger:        logger,
		workers:       workers,
		pollInterval:  seconds(cfg.Workflow.QueuePollInterval),
		retryInterval: seconds(cfg.Workflow.ErrorRetryInterval),
		heartbeat: NewHeartbeatMonitor(
			store,
			jobs,
			logger,
			seconds(cfg.Workflow.HeartbeatInterval),
			seconds(cfg.Workflow.HeartbeatTimeout),
		),
		active: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return time.Second
	}
	return time.Duration(value) * time.Second
}

// Start fails tickets orphaned by a previous daemon and launches the workers.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.runner == nil || m.store == nil || m.ledger == nil {
		m.mu.Unlock()
		return errors.New("workflow not configured")
	}
	m.mu.Unlock()

	// A single daemon holds the lock, so every claimed ticket at startup is orphaned.
	if _, err := m.heartbeat.Reclaim(ctx, time.Now().Add(time.Second)); err != nil {
		return fmt.Errorf("reclaim orphaned tickets: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	for i := 1; i <= m.workers; i++ {
		name := fmt.Sprintf("worker-%d", i)
		group.Go(func() error {
			m.runWorker(groupCtx, name)
			return nil
		})
	}
	group.Go(func() error {
		m.heartbeat.ReclaimLoop(groupCtx)
		return nil
	})
	m.cancel = cancel
	m.group = group
	m.running = true
	m.logger.Info("workflow started",
		logging.Int("workers", m.workers),
		logging.Duration("poll_interval", m.pollInterval),
		logging.String(logging.FieldEventType, "workflow_start"),
	)
	return nil
}

// Stop stops claiming new work and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	group := m.group
	m.running = false
	m.cancel = nil
	m.group = nil
	m.mu.Unlock()

	cancel()
	_ = group.Wait()
	m.logger.Info("workflow stopped", logging.String(logging.FieldEventType, "workflow_stop"))
}

// Running reports whether workers are active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
