package preflight

import (
	"context"

	"pcsteps/internal/config"
	"pcsteps/internal/services/twelvelabs"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// IndexLookup is the slice of the indexing service client the checks use.
type IndexLookup interface {
	FindIndex(ctx context.Context, name string) (twelvelabs.Index, bool, error)
}

// RunAll executes the local checks and, when lookup is non-nil, the
// indexing service check.
func RunAll(ctx context.Context, cfg *config.Config, lookup IndexLookup) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Video cache", cfg.Paths.VideoCacheDir),
		CheckCredentials(cfg),
	}
	if lookup != nil && cfg.Indexer.APIKey != "" {
		results = append(results, CheckIndexService(ctx, lookup, cfg.Indexer.IndexID, cfg.Indexer.IndexName))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
