package workflow_test

import (
	"context"
	"testing"
	"time"

	"karaoke/internal/config"
	"karaoke/internal/ledger"
	"karaoke/internal/pipeline"
	"karaoke/internal/queue"
	"karaoke/internal/stage"
	"karaoke/internal/testsupport"
	"karaoke/internal/workflow"
)

type blockingRunner struct {
	started chan string
	release chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan string, 4), release: make(chan struct{})}
}

func (r *blockingRunner) Run(_ context.Context, sc stage.Context) (stage.Context, error) {
	r.started <- sc.JobID
	<-r.release
	return sc, nil
}

func (r *blockingRunner) Health(context.Context) []stage.Health {
	return []stage.Health{stage.Healthy("stub")}
}

func setup(t *testing.T) (*config.Config, *ledger.Store, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(2))
	jobs, tickets := testsupport.MustOpenStores(t, cfg)
	return cfg, jobs, tickets
}

func submit(t *testing.T, jobs *ledger.Store, tickets *queue.Store, id string) {
	t.Helper()
	testsupport.NewJob(t, jobs, id, "Song "+id)
	if _, err := tickets.Enqueue(context.Background(), id, queue.Payload{Title: "Song " + id, Mode: "mock"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestManagerRunsQueuedJobsToCompletion(t *testing.T) {
	cfg, jobs, tickets := setup(t)
	orch, err := pipeline.New(pipeline.Options{
		Ledger: jobs,
		Mock:   pipeline.MockStrategies(""),
		JobDir: cfg.JobDir,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	mgr := workflow.NewManager(cfg, tickets, jobs, orch, nil, workflow.WithPollInterval(50*time.Millisecond))

	submit(t, jobs, tickets, "job-a")
	submit(t, jobs, tickets, "job-b")

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	waitFor(t, 10*time.Second, func() bool {
		for _, id := range []string{"job-a", "job-b"} {
			rec, err := jobs.Get(context.Background(), id)
			if err != nil || rec.Status != ledger.StatusCompleted {
				return false
			}
		}
		return true
	})

	waitFor(t, 5*time.Second, func() bool {
		stats, err := tickets.Stats(context.Background())
		return err == nil && stats.Done == 2 && stats.Pending() == 0
	})

	status := mgr.Status(context.Background())
	if !status.Running || status.Workers != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestStartFailsOrphanedJobs(t *testing.T) {
	cfg, jobs, tickets := setup(t)
	submit(t, jobs, tickets, "orphan")
	if _, err := tickets.Claim(context.Background(), "previous-daemon"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := jobs.MergeUpdate(context.Background(), "orphan", ledger.Processing(40, "Transcribing")); err != nil {
		t.Fatalf("MergeUpdate: %v", err)
	}

	runner := newBlockingRunner()
	close(runner.release)
	mgr := workflow.NewManager(cfg, tickets, jobs, runner, nil)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	rec, err := jobs.Get(context.Background(), "orphan")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != ledger.StatusFailed || rec.Error != workflow.LostWorkerMessage || rec.Progress != 0 {
		t.Fatalf("expected orphan FAILED, got %s %q at %d", rec.Status, rec.Error, rec.Progress)
	}
	select {
	case id := <-runner.started:
		t.Fatalf("orphaned job %s must not be resumed", id)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStopWaitsForInFlightJob(t *testing.T) {
	cfg, jobs, tickets := setup(t)
	submit(t, jobs, tickets, "slow")

	runner := newBlockingRunner()
	mgr := workflow.NewManager(cfg, tickets, jobs, runner, nil, workflow.WithPollInterval(50*time.Millisecond))
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case id := <-runner.started:
		if id != "slow" {
			t.Fatalf("unexpected job %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	status := mgr.Status(context.Background())
	if len(status.Active) != 1 || status.Active[0].JobID != "slow" {
		t.Fatalf("expected slow job active, got %+v", status.Active)
	}

	stopped := make(chan struct{})
	go func() {
		mgr.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while a job was running")
	case <-time.After(200 * time.Millisecond):
	}

	close(runner.release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the job finished")
	}

	ticket, err := tickets.Get(context.Background(), "slow")
	if err != nil || ticket == nil {
		t.Fatalf("Get ticket: %+v %v", ticket, err)
	}
	if ticket.State != queue.StateDone {
		t.Fatalf("expected ticket done, got %s", ticket.State)
	}
	if mgr.Running() {
		t.Fatal("manager still running after Stop")
	}
}

func TestStartTwiceFails(t *testing.T) {
	cfg, jobs, tickets := setup(t)
	runner := newBlockingRunner()
	mgr := workflow.NewManager(cfg, tickets, jobs, runner, nil)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestContextForForcesMockWithoutMedia(t *testing.T) {
	sc := workflow.ContextFor(&queue.Ticket{JobID: "j", Payload: queue.Payload{Mode: "normal", Title: "T"}})
	if sc.Mode != stage.ModeMock || sc.JobID != "j" || sc.Title != "T" {
		t.Fatalf("unexpected context: %+v", sc)
	}
	sc = workflow.ContextFor(&queue.Ticket{JobID: "k", Payload: queue.Payload{Mode: "normal", MediaURL: "https://x/y"}})
	if sc.Mode != stage.ModeNormal || sc.Source != "https://x/y" {
		t.Fatalf("unexpected context: %+v", sc)
	}
}
