package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
	"karaoke/internal/config"
)

// commandContext lazily loads configuration for commands that need it and
// resolves daemon connection settings, preferring flags over config.
type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, _, _, c.configErr = config.Load(c.configPath())
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	return strings.TrimSpace(c.flags.config)
}

// fromConfig returns the flag value when set, otherwise pick(cfg).
func (c *commandContext) fromConfig(flag string, pick func(*config.Config) string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		return pick(cfg)
	}
	return ""
}

func (c *commandContext) daemonAddress() string {
	return c.fromConfig(c.flags.addr, func(cfg *config.Config) string { return cfg.Paths.APIBind })
}

func (c *commandContext) apiToken() string {
	return c.fromConfig(c.flags.token, func(cfg *config.Config) string { return cfg.Paths.APIToken })
}

func (c *commandContext) withClient(fn func(*api.Client) error) error {
	client, err := api.NewClient(c.daemonAddress(), api.WithToken(c.apiToken()))
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	return wrapDaemonError(fn(client), client.BaseURL())
}

func wrapDaemonError(err error, addr string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrDaemonUnavailable) {
		return fmt.Errorf("connect to daemon: nothing is listening at %s; start it with `karaoked`", addr)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
