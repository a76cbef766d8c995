package config

import (
	"fmt"
	"strings"

	"karaoke/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeCollaborators()
	c.normalizeTranslation()
	c.normalizeStorage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	// An empty mock asset is allowed; mock jobs then run without source media.
	if c.Paths.MockAsset, err = expandPath(strings.TrimSpace(c.Paths.MockAsset)); err != nil {
		return fmt.Errorf("paths.mock_asset: %w", err)
	}
	if c.Render.Background, err = expandPath(strings.TrimSpace(c.Render.Background)); err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers == 0 {
		c.Workflow.Workers = defaultWorkers
	}
}

func (c *Config) normalizeCollaborators() {
	fill := func(dst *string, fallback string) {
		*dst = strings.TrimSpace(*dst)
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&c.Download.Binary, defaultDownloadBinary)
	fill(&c.Download.Format, defaultDownloadFormat)
	fill(&c.Download.AudioFormat, defaultDownloadAudioFormat)
	fill(&c.Download.AudioQuality, defaultDownloadAudioQuality)
	fill(&c.Separation.Binary, defaultDemucsBinary)
	fill(&c.Separation.Model, defaultDemucsModel)
	fill(&c.Transcription.Model, defaultWhisperXModel)
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	fill(&c.Transcription.VADMethod, defaultWhisperXVADMethod)
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	fill(&c.Render.FFmpegBinary, defaultFFmpegBinary)
	fill(&c.Render.VideoCodec, defaultVideoCodec)
	fill(&c.Render.AudioCodec, defaultAudioCodec)
	fill(&c.Render.Preset, defaultRenderPreset)
	if c.Render.Width == 0 {
		c.Render.Width = defaultRenderWidth
	}
	if c.Render.Height == 0 {
		c.Render.Height = defaultRenderHeight
	}
}

func (c *Config) normalizeTranslation() {
	t := &c.Translation
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = defaultTranslationProvider
	}
	t.TargetLanguage = strings.TrimSpace(t.TargetLanguage)
	if t.TargetLanguage == "" {
		t.TargetLanguage = defaultTargetLanguage
	}
	if normalized, err := language.Normalize(t.TargetLanguage); err == nil {
		t.TargetLanguage = normalized
	}
	t.GeminiAPIKey = strings.TrimSpace(t.GeminiAPIKey)
	t.OpenRouterAPIKey = strings.TrimSpace(t.OpenRouterAPIKey)
	if strings.TrimSpace(t.GeminiModel) == "" {
		t.GeminiModel = defaultGeminiModel
	}
	if strings.TrimSpace(t.BaseURL) == "" {
		t.BaseURL = defaultOpenRouterBaseURL
	}
	if strings.TrimSpace(t.Model) == "" {
		t.Model = defaultOpenRouterModel
	}
	if strings.TrimSpace(t.Referer) == "" {
		t.Referer = defaultOpenRouterReferer
	}
	if strings.TrimSpace(t.Title) == "" {
		t.Title = defaultOpenRouterTitle
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultTranslationTimeoutSeconds
	}
}

func (c *Config) normalizeStorage() {
	s := &c.Storage
	s.AccountID = strings.TrimSpace(s.AccountID)
	s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
	s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
	s.Bucket = strings.TrimSpace(s.Bucket)
	if s.Bucket == "" {
		s.Bucket = defaultStorageBucket
	}
	s.PublicURL = strings.TrimRight(strings.TrimSpace(s.PublicURL), "/")
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	if s.Endpoint == "" && s.AccountID != "" {
		s.Endpoint = s.AccountID + ".r2.cloudflarestorage.com"
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
