package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"karaoke/internal/lyrics"
	"karaoke/internal/subtitles"
)

func newSubtitlesCommand() *cobra.Command {
	var outputPath string
	var templateName string

	cmd := &cobra.Command{
		Use:         "subtitles <transcript.json>",
		Short:       "Convert a word-timed transcript into an ASS karaoke script",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := subtitles.ParseTemplate(templateName)
			if err != nil {
				return err
			}
			transcript, err := lyrics.Load(args[0])
			if err != nil {
				return fmt.Errorf("load transcript: %w", err)
			}
			segments := template.Apply(transcript.Segments)

			target := strings.TrimSpace(outputPath)
			if target == "" || target == "-" {
				_, err := subtitles.Build(segments).WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := subtitles.WriteFile(target, segments); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d line(s) to %s\n", len(segments), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination .ass file (stdout when empty)")
	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Subtitle template (standard, bilingual, triple)")
	return cmd
}
