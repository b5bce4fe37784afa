package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pcsteps/internal/videocache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the downloaded video cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show video cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := cacheManager(ctx)
			if err != nil {
				return err
			}
			stats, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Root:    %s\n", stats.Root)
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Size:    %s / %s\n", humanBytes(stats.TotalBytes), humanBytes(stats.MaxBytes))
			fmt.Fprintf(out, "Disk:    %s free (%.1f%%)\n", humanBytes(int64(stats.FreeBytes)), stats.FreeRatio*100)
			printCacheEntries(out, stats.EntrySummaries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCacheEntries(out io.Writer, entries []videocache.EntrySummary) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cached videos: none")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		updated := "unknown"
		if !entry.ModifiedAt.IsZero() {
			updated = entry.ModifiedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{entry.VideoID, humanBytes(entry.SizeBytes), updated, orDash(entry.SourceURL)})
	}
	fmt.Fprintln(out, renderTable([]column{
		{Header: "Video"},
		{Header: "Size", Right: true},
		{Header: "Updated"},
		{Header: "Source", MaxWidth: 60},
	}, rows))
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Prune the video cache now",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := cacheManager(ctx)
			if err != nil {
				return err
			}
			before, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if err := manager.Prune(cmd.Context(), ""); err != nil {
				return err
			}
			after, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			freed := before.TotalBytes - after.TotalBytes
			if freed <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s (now %s / %s)\n", humanBytes(freed), humanBytes(after.TotalBytes), humanBytes(after.MaxBytes))
			return nil
		},
	}
}

// cacheManager opens the cache read-only; stats and pruning never download.
func cacheManager(ctx *commandContext) (*videocache.Manager, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.logger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.VideoCacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	manager := videocache.NewManager(cfg, nil, logger)
	if manager == nil {
		return nil, fmt.Errorf("video cache dir is not configured")
	}
	return manager, nil
}
