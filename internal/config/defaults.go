package config

const (
	defaultWorkDir                   = "/tmp/karaoke-gen"
	defaultDataDir                   = "~/.local/share/karaoke"
	defaultLogDir                    = "~/.local/share/karaoke/logs"
	defaultMockAsset                 = "~/.local/share/karaoke/assets/sample.mp3"
	defaultAPIBind                   = "127.0.0.1:8000"
	defaultWorkers                   = 2
	defaultQueuePollInterval         = 5
	defaultErrorRetryInterval        = 10
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
	defaultDownloadBinary            = "yt-dlp"
	defaultDownloadFormat            = "bestaudio/best"
	defaultDownloadAudioFormat       = "mp3"
	defaultDownloadAudioQuality      = "192K"
	defaultDownloadTimeoutSeconds    = 600
	defaultDemucsBinary              = "demucs"
	defaultDemucsModel               = "htdemucs"
	defaultWhisperXModel             = "large-v3"
	defaultWhisperXVADMethod         = "silero"
	defaultTranslationProvider       = "gemini"
	defaultTargetLanguage            = "ko"
	defaultGeminiModel               = "gemini-2.5-flash"
	defaultOpenRouterBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel           = "google/gemini-2.5-flash"
	defaultOpenRouterReferer         = "https://github.com/karaoke-gen/karaoke"
	defaultOpenRouterTitle           = "Karaoke Generator"
	defaultTranslationTimeoutSeconds = 60
	defaultFFmpegBinary              = "ffmpeg"
	defaultRenderWidth               = 1080
	defaultRenderHeight              = 1920
	defaultVideoCodec                = "libx264"
	defaultAudioCodec                = "aac"
	defaultRenderPreset              = "veryfast"
	defaultStorageBucket             = "karaoke-assets"
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"

	// ProviderGemini selects the Google Gemini annotation back end.
	ProviderGemini = "gemini"
	// ProviderOpenRouter selects the OpenRouter chat-completions back end.
	ProviderOpenRouter = "openrouter"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			MockAsset: defaultMockAsset,
			APIBind:   defaultAPIBind,
		},
		Workflow: Workflow{
			Workers:            defaultWorkers,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Download: Download{
			Binary:         defaultDownloadBinary,
			Format:         defaultDownloadFormat,
			AudioFormat:    defaultDownloadAudioFormat,
			AudioQuality:   defaultDownloadAudioQuality,
			TimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		Separation: Separation{
			Binary: defaultDemucsBinary,
			Model:  defaultDemucsModel,
		},
		Transcription: Transcription{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
		},
		Translation: Translation{
			Provider:       defaultTranslationProvider,
			TargetLanguage: defaultTargetLanguage,
			GeminiModel:    defaultGeminiModel,
			BaseURL:        defaultOpenRouterBaseURL,
			Model:          defaultOpenRouterModel,
			Referer:        defaultOpenRouterReferer,
			Title:          defaultOpenRouterTitle,
			TimeoutSeconds: defaultTranslationTimeoutSeconds,
		},
		Render: Render{
			FFmpegBinary: defaultFFmpegBinary,
			Width:        defaultRenderWidth,
			Height:       defaultRenderHeight,
			VideoCodec:   defaultVideoCodec,
			AudioCodec:   defaultAudioCodec,
			Preset:       defaultRenderPreset,
		},
		Storage: Storage{
			Bucket: defaultStorageBucket,
			UseSSL: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
