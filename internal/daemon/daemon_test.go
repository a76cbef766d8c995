package daemon_test

import (
	"context"
	"testing"

	"karaoke/internal/daemon"
	"karaoke/internal/ledger"
	"karaoke/internal/pipeline"
	"karaoke/internal/queue"
	"karaoke/internal/testsupport"
	"karaoke/internal/workflow"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenDB(t, cfg)
	jobs, tickets := ledger.NewStore(db), queue.NewStore(db)
	orch, err := pipeline.New(pipeline.Options{Ledger: jobs, Mock: pipeline.MockStrategies(""), JobDir: cfg.JobDir})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	mgr := workflow.NewManager(cfg, tickets, jobs, orch, nil)
	d, err := daemon.New(cfg, jobs, db.Path(), mgr, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Running() {
		t.Fatal("expected daemon to report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	status := d.Status(ctx)
	if status.Workflow.Workers != cfg.Workflow.Workers || !status.Workflow.Running {
		t.Fatalf("unexpected workflow status: %+v", status.Workflow)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency report")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestSecondDaemonRefusesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jobs, tickets := testsupport.MustOpenStores(t, cfg)
	orch, err := pipeline.New(pipeline.Options{Ledger: jobs, Mock: pipeline.MockStrategies(""), JobDir: cfg.JobDir})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	first, err := daemon.New(cfg, jobs, "", workflow.NewManager(cfg, tickets, jobs, orch, nil), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := daemon.New(cfg, jobs, "", workflow.NewManager(cfg, tickets, jobs, orch, nil), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected lock contention error")
	}
}
