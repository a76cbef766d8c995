package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"karaoke/internal/annotation"
	"karaoke/internal/config"
	"karaoke/internal/logging"
	"karaoke/internal/pipeline"
	"karaoke/internal/services/demucs"
	"karaoke/internal/services/ffmpeg"
	"karaoke/internal/services/gemini"
	"karaoke/internal/services/llm"
	"karaoke/internal/services/objectstore"
	"karaoke/internal/services/whisperx"
	"karaoke/internal/services/ytdlp"
)

// buildStrategies assembles the normal-mode collaborators from cfg. The
// returned func releases provider clients.
func buildStrategies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Strategies, func(), error) {
	annotator, closeAnnotator, err := buildAnnotator(ctx, cfg, logger)
	if err != nil {
		return pipeline.Strategies{}, nil, err
	}

	publisher, err := objectstore.New(objectstore.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		PublicURL:       cfg.Storage.PublicURL,
		UseSSL:          cfg.Storage.UseSSL,
	}, logger)
	if err != nil {
		closeAnnotator()
		return pipeline.Strategies{}, nil, err
	}

	strategies := pipeline.Strategies{
		Downloader: ytdlp.New(ytdlp.Config{
			Binary:       cfg.Download.Binary,
			Format:       cfg.Download.Format,
			AudioFormat:  cfg.Download.AudioFormat,
			AudioQuality: cfg.Download.AudioQuality,
			Timeout:      time.Duration(cfg.Download.TimeoutSeconds) * time.Second,
		}),
		Separator: demucs.New(demucs.Config{
			Binary: cfg.Separation.Binary,
			Model:  cfg.Separation.Model,
			Device: cfg.Separation.Device,
		}),
		Transcriber: whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.Model,
			CUDAEnabled: cfg.Transcription.CUDAEnabled,
			VADMethod:   cfg.Transcription.VADMethod,
			HFToken:     cfg.Transcription.HFToken,
			Binary:      cfg.WhisperXBinary(),
		}),
		Annotator: annotator,
		Renderer: ffmpeg.New(ffmpeg.Config{
			Binary:     cfg.Render.FFmpegBinary,
			Background: cfg.Render.Background,
			Width:      cfg.Render.Width,
			Height:     cfg.Render.Height,
			VideoCodec: cfg.Render.VideoCodec,
			AudioCodec: cfg.Render.AudioCodec,
			Preset:     cfg.Render.Preset,
		}),
		Publisher: publisher,
	}
	return strategies, closeAnnotator, nil
}

// buildAnnotator picks the translation back end. A provider without a key
// yields a translator that fails each call with a configuration error, so
// jobs still complete without annotations.
func buildAnnotator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*annotation.Translator, func(), error) {
	noop := func() {}
	tr := cfg.Translation
	switch tr.Provider {
	case config.ProviderGemini:
		if strings.TrimSpace(tr.GeminiAPIKey) == "" {
			warnUnconfigured(logger, tr.Provider, "GEMINI_API_KEY")
			return annotation.NewTranslator(tr.Provider, nil), noop, nil
		}
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: tr.GeminiAPIKey, Model: tr.GeminiModel})
		if err != nil {
			return nil, noop, err
		}
		return annotation.NewTranslator(tr.Provider, client), func() { _ = client.Close() }, nil
	case config.ProviderOpenRouter:
		if strings.TrimSpace(tr.OpenRouterAPIKey) == "" {
			warnUnconfigured(logger, tr.Provider, "OPENROUTER_API_KEY")
			return annotation.NewTranslator(tr.Provider, nil), noop, nil
		}
		client := llm.NewClient(llm.Config{
			APIKey:         tr.OpenRouterAPIKey,
			BaseURL:        tr.BaseURL,
			Model:          tr.Model,
			Referer:        tr.Referer,
			Title:          tr.Title,
			TimeoutSeconds: tr.TimeoutSeconds,
		})
		return annotation.NewTranslator(tr.Provider, client), noop, nil
	default:
		return nil, noop, fmt.Errorf("translation provider %q is not supported", tr.Provider)
	}
}

func warnUnconfigured(logger *slog.Logger, provider, envVar string) {
	logging.WarnWithContext(logger, "translation provider has no api key", "annotation_unconfigured",
		logging.String("provider", provider),
		logging.String(logging.FieldErrorHint, "set "+envVar),
		logging.String(logging.FieldImpact, "normal-mode jobs complete without translations"),
	)
}
