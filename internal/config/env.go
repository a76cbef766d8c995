package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the deployment variables honoured on top of the TOML file.
// Unset variables leave the file (or default) value in place.
type envOverrides struct {
	WorkDir            string `envconfig:"TEMP_DIR"`
	GeminiAPIKey       string `envconfig:"GEMINI_API_KEY"`
	OpenRouterAPIKey   string `envconfig:"OPENROUTER_API_KEY"`
	HFToken            string `envconfig:"HF_TOKEN"`
	R2AccountID        string `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID      string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey  string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2BucketName       string `envconfig:"R2_BUCKET_NAME"`
	R2PublicURL        string `envconfig:"R2_PUBLIC_URL"`
	APIBind            string `envconfig:"KARAOKE_API_BIND"`
	APIToken           string `envconfig:"KARAOKE_API_TOKEN"`
	LogLevel           string `envconfig:"KARAOKE_LOG_LEVEL"`
	LogFormat          string `envconfig:"KARAOKE_LOG_FORMAT"`
	Workers            int    `envconfig:"KARAOKE_WORKERS"`
	TranslationBackend string `envconfig:"KARAOKE_TRANSLATION_PROVIDER"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}

	overrideString(&c.Paths.WorkDir, env.WorkDir)
	overrideString(&c.Paths.APIBind, env.APIBind)
	overrideString(&c.Paths.APIToken, env.APIToken)
	overrideString(&c.Translation.GeminiAPIKey, env.GeminiAPIKey)
	overrideString(&c.Translation.OpenRouterAPIKey, env.OpenRouterAPIKey)
	overrideString(&c.Translation.Provider, env.TranslationBackend)
	overrideString(&c.Transcription.HFToken, env.HFToken)
	overrideString(&c.Storage.AccountID, env.R2AccountID)
	overrideString(&c.Storage.AccessKeyID, env.R2AccessKeyID)
	overrideString(&c.Storage.SecretAccessKey, env.R2SecretAccessKey)
	overrideString(&c.Storage.Bucket, env.R2BucketName)
	overrideString(&c.Storage.PublicURL, env.R2PublicURL)
	overrideString(&c.Logging.Level, env.LogLevel)
	overrideString(&c.Logging.Format, env.LogFormat)
	if env.Workers > 0 {
		c.Workflow.Workers = env.Workers
	}
	return nil
}

func overrideString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
