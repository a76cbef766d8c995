package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
	"karaoke/internal/ledger"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var req api.CreateJobRequest
	var targets string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a karaoke job on the daemon",
		Example: `  karaoke submit --title "Song" --artist "Singer" --media-url https://youtu.be/abc
  karaoke submit --title "Song" --artist "Singer" --mock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TargetLanguages = splitList(targets)
			return ctx.withClient(func(client *api.Client) error {
				rec, err := client.Submit(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("submit job: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued job %s (%s mode)\n", rec.ID, rec.Mode)
				fmt.Fprintf(out, "Follow it with `karaoke show %s`\n", rec.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Song title")
	cmd.Flags().StringVar(&req.Artist, "artist", "", "Performing artist")
	cmd.Flags().StringVar(&req.Platform, "platform", "", "Target platform (YOUTUBE, TIKTOK, SHORTS)")
	cmd.Flags().StringVar(&req.SourceLanguage, "source-language", "", "Language sung in the source (auto-detect when empty)")
	cmd.Flags().StringVar(&targets, "target", "", "Comma-separated annotation languages")
	cmd.Flags().StringVar(&req.Template, "template", "", "Subtitle template (standard, bilingual, triple)")
	cmd.Flags().StringVar(&req.MediaURL, "media-url", "", "Source media URL or daemon-local file path")
	cmd.Flags().BoolVar(&req.UseMockData, "mock", false, "Run the job with mock collaborators")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the created job as JSON")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("artist")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				rec, err := client.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("get job: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				out := cmd.OutOrStdout()
				for _, line := range jobLines(rec, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				records, err := client.List(cmd.Context(), statuses...)
				if err != nil {
					return fmt.Errorf("list jobs: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No jobs")
					return nil
				}
				fmt.Fprintln(out, renderJobTable(records))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderJobTable(records []ledger.Record) string {
	columns := []column{
		{header: "ID"},
		{header: "Artist", maxWidth: 24},
		{header: "Title", maxWidth: 32},
		{header: "Mode"},
		{header: "Status"},
		{header: "Progress", alignRight: true},
		{header: "Detail", maxWidth: 40},
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		detail := rec.Detail
		if rec.Status == ledger.StatusFailed && rec.Error != "" {
			detail = rec.Error
		}
		rows = append(rows, []string{
			rec.ID,
			rec.Artist,
			rec.Title,
			rec.Mode,
			string(rec.Status),
			strconv.Itoa(rec.Progress) + "%",
			detail,
		})
	}
	return renderTable(columns, rows)
}

func jobLines(rec ledger.Record, colorize bool) []string {
	lines := renderSectionHeader(fmt.Sprintf("Job %s", rec.ID), colorize)
	lines = append(lines,
		renderStatusLine("Song", statusInfo, fmt.Sprintf("%s - %s", rec.Artist, rec.Title), colorize),
		renderStatusLine("Mode", statusInfo, rec.Mode, colorize),
		renderStatusLine("Status", jobStatusKind(rec.Status), fmt.Sprintf("%s %d%%", rec.Status, rec.Progress), colorize),
	)
	if rec.Detail != "" {
		lines = append(lines, renderStatusLine("Detail", statusInfo, rec.Detail, colorize))
	}
	if rec.Error != "" {
		lines = append(lines, renderStatusLine("Error", statusError, rec.Error, colorize))
	}
	if rec.ResultURL != "" {
		lines = append(lines, renderStatusLine("Result", statusOK, rec.ResultURL, colorize))
	}
	if rec.Result != nil {
		lines = append(lines, renderStatusLine("Annotated", statusInfo, yesNo(rec.Result.Annotated), colorize))
		lines = append(lines, renderStatusLine("Published", statusInfo, yesNo(rec.Result.Published), colorize))
	}
	return lines
}

func jobStatusKind(status ledger.Status) statusKind {
	switch status {
	case ledger.StatusCompleted:
		return statusOK
	case ledger.StatusFailed:
		return statusError
	case ledger.StatusProcessing:
		return statusWarn
	default:
		return statusInfo
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
