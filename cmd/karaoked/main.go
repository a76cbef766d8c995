package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"karaoke/internal/api"
	"karaoke/internal/config"
	"karaoke/internal/daemon"
	"karaoke/internal/database"
	"karaoke/internal/ledger"
	"karaoke/internal/logging"
	"karaoke/internal/metrics"
	"karaoke/internal/pipeline"
	"karaoke/internal/queue"
	"karaoke/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	// A missing .env is the common case.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logging.ErrorWithContext(logger, "karaoked exited", "daemon_exit", logging.Error(err))
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	jobs := ledger.NewStore(db)
	tickets := queue.NewStore(db)

	realSet, closeReal, err := buildStrategies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeReal()

	m := metrics.New()
	if err := m.RegisterStores(tickets, jobs, logger); err != nil {
		return err
	}

	orchestrator, err := pipeline.New(pipeline.Options{
		Ledger:   jobs,
		Real:     realSet,
		Mock:     pipeline.MockStrategies(cfg.Paths.MockAsset),
		JobDir:   cfg.JobDir,
		Logger:   logger,
		Observer: m,
	})
	if err != nil {
		return err
	}

	manager := workflow.NewManager(cfg, tickets, jobs, orchestrator, logger)
	d, err := daemon.New(cfg, jobs, db.Path(), manager, logger)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	service := api.NewJobService(jobs, tickets, logger, api.WithDefaultTarget(cfg.Translation.TargetLanguage))
	router := daemon.NewRouter(daemon.RouterOptions{
		Jobs:    service,
		Status:  d.Status,
		Metrics: m,
		Token:   cfg.Paths.APIToken,
		Logger:  logger,
	})
	server := daemon.NewServer(cfg.Paths.APIBind, router, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()

	<-ctx.Done()
	logger.Info("karaoked shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}
