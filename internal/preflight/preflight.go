package preflight

import (
	"context"

	"hhapply/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Results directory", cfg.Paths.ResultsDir),
		CheckDiskSpace("Free disk space", cfg.Paths.LogDir),
		CheckHH(ctx, cfg),
	}

	if cfg.Notion.Enabled {
		results = append(results, CheckNotion(ctx, cfg))
	}

	results = append(results, CheckExternalCommands(cfg)...)

	return results
}

// FailureCount returns how many checks did not pass.
func FailureCount(results []Result) int {
	failed := 0
	for _, result := range results {
		if !result.Passed {
			failed++
		}
	}
	return failed
}
