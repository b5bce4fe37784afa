package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pcsteps/internal/pipeline"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput  bool
		summaryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "show <artifact|video-id>",
		Short: "Display a processed video artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := resolveArtifact(cfg, args[0])
			if err != nil {
				return err
			}
			result, err := pipeline.LoadResults(path)
			if err != nil {
				return err
			}
			summary := pipeline.Summarize(result)
			if jsonOutput {
				if summaryOnly {
					return writeJSON(cmd, summary)
				}
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			printSummary(out, summary, shouldColorize(out))
			if summaryOnly || len(result.AssemblySteps) <= len(summary.Samples) {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "All steps:")
			fmt.Fprintln(out, stepsTable(result.AssemblySteps))
			fmt.Fprintf(out, "Indexed video: %s (processed %s)\n",
				orDash(strings.TrimSpace(result.IndexedVideoID)),
				result.ProcessingTimestamp.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Only print the summary")
	return cmd
}
