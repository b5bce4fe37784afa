package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pcsteps/internal/assembly"
	"pcsteps/internal/config"
	"pcsteps/internal/pipeline"
	"pcsteps/internal/services"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath     string
		skipValidation bool
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Download, index and extract assembly steps from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx := services.WithRunID(cmd.Context(), pipeline.NewRunID())
			p, closeFn, err := ctx.buildPipeline(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := p.ProcessVideo(runCtx, url, skipValidation)
			if err != nil {
				return err
			}

			target, err := artifactTarget(cfg, outputPath, result.Metadata.VideoID)
			if err != nil {
				return err
			}
			if err := pipeline.SaveResults(result, target); err != nil {
				return err
			}
			p.RecordArtifact(runCtx, target)

			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			printSummary(out, pipeline.Summarize(result), shouldColorize(out))
			fmt.Fprintf(out, "\nSaved %d steps to %s\n", result.TotalStepsExtracted, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Artifact path (defaults to output_dir/processed_<video_id>.json)")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Process even if the title does not look like a PC build video")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full artifact as JSON")
	return cmd
}

func artifactTarget(cfg *config.Config, flag, videoID string) (string, error) {
	if strings.TrimSpace(flag) == "" {
		return cfg.ArtifactPath(videoID), nil
	}
	expanded, err := config.ExpandPath(strings.TrimSpace(flag))
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	return expanded, nil
}

func printSummary(out io.Writer, summary pipeline.Summary, colorize bool) {
	for _, line := range renderSectionHeader(orDash(summary.Title), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Channel:     %s\n", orDash(summary.Channel))
	duration := "-"
	if summary.DurationSeconds > 0 {
		duration = clock(summary.DurationSeconds)
	}
	fmt.Fprintf(out, "Duration:    %s\n", duration)
	fmt.Fprintf(out, "Video type:  %s\n", displayLabel(string(summary.VideoType)))
	fmt.Fprintf(out, "Skill level: %s\n", displayLabel(string(summary.SkillLevel)))
	fmt.Fprintf(out, "Steps:       %d\n", summary.TotalSteps)
	if len(summary.ByComponent) > 0 {
		parts := make([]string, 0, len(summary.ByComponent))
		for _, count := range summary.ByComponent {
			parts = append(parts, fmt.Sprintf("%s %d", count.Component, count.Count))
		}
		fmt.Fprintf(out, "Components:  %s\n", strings.Join(parts, ", "))
	}
	if len(summary.Samples) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, stepsTable(summary.Samples))
	}
}

func stepsTable(steps []assembly.AssemblyStep) string {
	rows := make([][]string, 0, len(steps))
	for _, step := range steps {
		rows = append(rows, []string{
			fmt.Sprintf("%d", step.StepOrder),
			clock(step.Timestamp.Start) + "-" + clock(step.Timestamp.End),
			string(step.Component),
			string(step.Action),
			displayLabel(string(step.SourceConfidence)),
			step.Description,
		})
	}
	return renderTable([]column{
		{Header: "#", Right: true},
		{Header: "Time"},
		{Header: "Component"},
		{Header: "Action"},
		{Header: "Confidence"},
		{Header: "Description", MaxWidth: 60},
	}, rows)
}
