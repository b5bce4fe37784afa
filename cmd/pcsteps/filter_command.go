package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pcsteps/internal/assembly"
	"pcsteps/internal/config"
	"pcsteps/internal/fileutil"
	"pcsteps/internal/pipeline"
	"pcsteps/internal/steps"
)

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var (
		preset     string
		component  string
		action     string
		confidence string
		minStart   float64
		maxStart   float64
		outputPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "filter <artifact|video-id>",
		Short: "Select steps from an artifact by component, action, time or confidence",
		Long: "Select steps from a processed artifact. --preset applies one of the named " +
			"extraction presets (see `pcsteps queries`); explicit flags override its fields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var criteria steps.Criteria
			if name := strings.TrimSpace(preset); name != "" {
				p, ok := steps.QueryByName(name)
				if !ok {
					return fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(steps.PresetNames(), ", "))
				}
				criteria = p.Criteria()
			}
			if component != "" {
				if criteria.Component, err = assembly.ParseComponent(component); err != nil {
					return err
				}
			}
			if action != "" {
				if criteria.Action, err = assembly.ParseAction(action); err != nil {
					return err
				}
			}
			if confidence != "" {
				if criteria.Confidence, err = assembly.ParseSourceConfidence(confidence); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("from") {
				criteria.MinStart = &minStart
			}
			if cmd.Flags().Changed("to") {
				criteria.MaxStart = &maxStart
			}

			path, err := resolveArtifact(cfg, args[0])
			if err != nil {
				return err
			}
			result, err := pipeline.LoadResults(path)
			if err != nil {
				return err
			}
			matched := steps.Filter(result.AssemblySteps, criteria)
			if strings.TrimSpace(outputPath) != "" {
				target, err := config.ExpandPath(strings.TrimSpace(outputPath))
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				if err := fileutil.WriteJSONAtomic(target, matched); err != nil {
					return fmt.Errorf("write filtered steps: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d steps to %s\n", len(matched), target)
			}
			if jsonOutput {
				return writeJSON(cmd, matched)
			}

			out := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(out, "No matching steps")
				return nil
			}
			fmt.Fprintln(out, stepsTable(matched))
			fmt.Fprintf(out, "%d of %d steps\n", len(matched), len(result.AssemblySteps))
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Named preset, e.g. cpu_insert or ram_insert")
	cmd.Flags().StringVar(&component, "component", "", "Component (CPU, RAM, GPU, motherboard, PSU, cooler, storage, cables)")
	cmd.Flags().StringVar(&action, "action", "", "Action (insert, mount, connect, align, lock, remove)")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Source confidence (explicitly_shown, verbally_explained, inferred)")
	cmd.Flags().Float64Var(&minStart, "from", 0, "Earliest step start in seconds (inclusive)")
	cmd.Flags().Float64Var(&maxStart, "to", 0, "Latest step start in seconds (inclusive)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Also write matching steps to this JSON file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output matching steps as JSON")
	return cmd
}
