package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcsteps/internal/registry"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent processing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRegistry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "Run registry is disabled (set registry.enabled = true in config.toml)")
				return nil
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable([]column{
				{Header: "Started"},
				{Header: "Source"},
				{Header: "Status"},
				{Header: "Steps", Right: true},
				{Header: "Duration", Right: true},
				{Header: "Detail", MaxWidth: 50},
			}, historyRows(runs)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func historyRows(runs []registry.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		source := run.SourceID
		if source == "" {
			source = run.SourceURL
		}
		detail := run.ArtifactPath
		if run.Status == registry.RunStatusFailed {
			detail = fmt.Sprintf("%s: %s", orDash(run.ErrorStage), run.ErrorMessage)
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			orDash(source),
			run.Status,
			fmt.Sprintf("%d", run.Steps),
			humanDuration(run.Duration()),
			orDash(detail),
		})
	}
	return rows
}
