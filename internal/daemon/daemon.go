package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"karaoke/internal/api"
	"karaoke/internal/config"
	"karaoke/internal/deps"
	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/workflow"
)

// LockFileName is created in the data directory while a daemon runs.
const LockFileName = "karaoked.lock"

// Daemon coordinates the worker pool and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	jobs     *ledger.Store
	workflow *workflow.Manager
	dbPath   string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, jobs *ledger.Store, dbPath string, wf *workflow.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || jobs == nil || wf == nil {
		return nil, errors.New("daemon requires config, ledger, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, LockFileName)
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		jobs:     jobs,
		workflow: wf,
		dbPath:   dbPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the worker pool.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("ensure lock directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another karaoke daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start workflow: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("karaoke daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "daemon_start"),
	)
	return nil
}

// Stop stops the worker pool, waiting for in-flight jobs, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
			logging.String(logging.FieldImpact, "next daemon start may report a running instance"),
		)
	}
	d.running.Store(false)
	d.logger.Info("karaoke daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Running reports whether the daemon holds the lock and runs workers.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		PID:          os.Getpid(),
		DatabasePath: d.dbPath,
		LockFilePath: d.lockPath,
		Workflow:     d.workflow.Status(ctx),
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
		Counts:       map[string]int{},
	}
	counts, err := d.jobs.Counts(ctx)
	if err != nil {
		d.logger.Warn("failed to count jobs", logging.Error(err))
		return status
	}
	for state, n := range counts {
		status.Counts[string(state)] = n
	}
	return status
}
