package main

import (
	"context"
	"testing"

	"karaoke/internal/annotation"
	"karaoke/internal/config"
	"karaoke/internal/logging"
	"karaoke/internal/services/objectstore"
	"karaoke/internal/testsupport"
)

func TestBuildStrategiesWithoutCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Translation.Provider = config.ProviderGemini
	cfg.Translation.GeminiAPIKey = ""

	strategies, closeFn, err := buildStrategies(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("buildStrategies: %v", err)
	}
	defer closeFn()

	if _, ok := strategies.Publisher.(objectstore.Local); !ok {
		t.Fatalf("expected local publisher without storage credentials, got %T", strategies.Publisher)
	}
	translator, ok := strategies.Annotator.(*annotation.Translator)
	if !ok {
		t.Fatalf("expected translator, got %T", strategies.Annotator)
	}
	if health := translator.HealthCheck(context.Background()); health.Ready {
		t.Fatal("translator without a key should report not ready")
	}
	if strategies.Downloader == nil || strategies.Separator == nil || strategies.Transcriber == nil || strategies.Renderer == nil {
		t.Fatal("expected every collaborator to be set")
	}
}

func TestBuildAnnotatorOpenRouter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Translation.Provider = config.ProviderOpenRouter
	cfg.Translation.OpenRouterAPIKey = "key"

	translator, closeFn, err := buildAnnotator(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("buildAnnotator: %v", err)
	}
	defer closeFn()
	if translator.Provider() != config.ProviderOpenRouter {
		t.Fatalf("unexpected provider %q", translator.Provider())
	}
	if health := translator.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected ready translator, got %+v", health)
	}
}

func TestBuildAnnotatorRejectsUnknownProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Translation.Provider = "carrier-pigeon"

	if _, _, err := buildAnnotator(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
