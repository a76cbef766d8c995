package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
	"karaoke/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, worker and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				status, err := client.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("daemon status: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), status)
				}
				out := cmd.OutOrStdout()
				for _, line := range daemonStatusLines(status, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the external tools normal-mode jobs need",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			if jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), statuses); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, line := range dependencyLines(statuses, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
			}
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func daemonStatusLines(status api.DaemonStatus, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	wf := status.Workflow
	running := renderStatusLine("Workers", statusError, "Stopped", colorize)
	if wf.Running {
		running = renderStatusLine("Workers", statusOK, fmt.Sprintf("Running (%d)", wf.Workers), colorize)
	}
	lines = append(lines,
		renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize),
		running,
		renderStatusLine("Database", statusInfo, status.DatabasePath, colorize),
		renderStatusLine("Queue", statusInfo, fmt.Sprintf("%d queued, %d claimed, %d done",
			wf.QueueStats.Queued, wf.QueueStats.Claimed, wf.QueueStats.Done), colorize),
	)
	for _, active := range wf.Active {
		lines = append(lines, renderStatusLine(active.Worker, statusWarn, active.JobID, colorize))
	}
	if wf.LastError != "" {
		lines = append(lines, renderStatusLine("Last error", statusError, wf.LastError, colorize))
	}

	if len(status.Counts) > 0 {
		keys := make([]string, 0, len(status.Counts))
		for key := range status.Counts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", key, status.Counts[key]))
		}
		lines = append(lines, renderStatusLine("Jobs", statusInfo, strings.Join(parts, " "), colorize))
	}

	if len(wf.StageHealth) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Collaborators", colorize)...)
		for _, health := range wf.StageHealth {
			if health.Ready {
				lines = append(lines, renderStatusLine(health.Name, statusOK, "Ready", colorize))
				continue
			}
			lines = append(lines, renderStatusLine(health.Name, statusError, health.Detail, colorize))
		}
	}

	if len(status.Dependencies) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
		lines = append(lines, dependencyLines(status.Dependencies, colorize)...)
	}
	return lines
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := deps.Missing(statuses)
	if len(missing) == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "All required tools available", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d required tool(s) missing", len(missing)), colorize))
	}
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	return lines
}
