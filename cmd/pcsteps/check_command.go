package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pcsteps/internal/deps"
	"pcsteps/internal/preflight"
	"pcsteps/internal/registry"
	"pcsteps/internal/services/twelvelabs"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check external tools, credentials and local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0

			lines := renderSectionHeader("Dependencies", colorize)
			statuses := deps.CheckBinaries(cmd.Context(), deps.Requirements(cfg))
			for _, status := range statuses {
				switch {
				case status.Available:
					lines = append(lines, renderStatusLine(status.Name, statusOK, strings.TrimSpace(status.Version+" "+status.Detail), colorize))
				case status.Optional:
					lines = append(lines, renderStatusLine(status.Name, statusWarn, status.Detail+" (optional)", colorize))
				default:
					lines = append(lines, renderStatusLine(status.Name, statusError, status.Detail, colorize))
				}
			}
			failures += len(deps.MissingRequired(statuses))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			if err := cfg.EnsureDirectories(); err != nil {
				failures++
				lines = append(lines, renderStatusLine("Directories", statusError, err.Error(), colorize))
			}

			var lookup preflight.IndexLookup
			if !offline && cfg.Indexer.APIKey != "" {
				client, err := twelvelabs.New(twelvelabs.Config{
					APIKey:  cfg.Indexer.APIKey,
					BaseURL: cfg.Indexer.BaseURL,
					Timeout: cfg.IndexerTimeout(),
				})
				if err == nil {
					lookup = client
				}
			}
			results := preflight.RunAll(cmd.Context(), cfg, lookup)
			for _, result := range results {
				status := statusOK
				if !result.Passed {
					status = statusError
				}
				lines = append(lines, renderStatusLine(result.Name, status, result.Detail, colorize))
			}
			failures += len(preflight.Failed(results))
			if offline {
				lines = append(lines, renderStatusLine("Indexing service", statusInfo, "skipped (--offline)", colorize))
			}

			store, err := registry.Open(cfg)
			switch {
			case errors.Is(err, registry.ErrDisabled):
				lines = append(lines, renderStatusLine("Registry", statusInfo, "disabled", colorize))
			case err != nil:
				lines = append(lines, renderStatusLine("Registry", statusWarn, err.Error(), colorize))
			default:
				lines = append(lines, renderStatusLine("Registry", statusOK, store.Path(), colorize))
				_ = store.Close()
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the indexing service reachability check")
	return cmd
}
