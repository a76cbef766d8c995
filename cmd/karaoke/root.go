package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	addr   string
	token  string
	config string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := &commandContext{flags: flags}

	root := &cobra.Command{
		Use:   "karaoke",
		Short: "Submit and inspect karaoke video jobs",
		Long: "karaoke talks to a running karaoked daemon over its HTTP API.\n" +
			"The subtitles, health and config commands work without a daemon.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.addr, "addr", "", "Daemon address (defaults to paths.api_bind)")
	pf.StringVar(&flags.token, "token", "", "Bearer token for the daemon API (defaults to paths.api_token)")
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")

	root.AddCommand(
		newSubmitCommand(ctx),
		newShowCommand(ctx),
		newListCommand(ctx),
		newStatusCommand(ctx),
		newHealthCommand(ctx),
		newSubtitlesCommand(),
		newConfigCommand(ctx),
	)
	return root
}
