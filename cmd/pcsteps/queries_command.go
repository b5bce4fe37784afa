package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcsteps/internal/steps"
)

func newQueriesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "queries",
		Short:       "List the extraction queries and named presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := steps.DefaultQueries()
			presets := steps.Presets()
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"queries": queries,
					"presets": presets,
				})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(queries))
			for i, q := range queries {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), orDash(string(q.Component)), orDash(string(q.Action)), q.Text})
			}
			fmt.Fprintln(out, "Extraction queries:")
			fmt.Fprintln(out, renderTable([]column{
				{Header: "#", Right: true},
				{Header: "Component"},
				{Header: "Action"},
				{Header: "Query", MaxWidth: 70},
			}, rows))

			rows = rows[:0]
			for _, p := range presets {
				rows = append(rows, []string{p.Name, orDash(string(p.Component)), orDash(string(p.Action))})
			}
			fmt.Fprintln(out, "Presets (pcsteps filter --preset <name>):")
			fmt.Fprintln(out, renderTable([]column{
				{Header: "Preset"},
				{Header: "Component"},
				{Header: "Action"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
