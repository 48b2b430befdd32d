package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"hhapply/internal/classify"
	"hhapply/internal/runlog"
)

// ClassifyResult reports one classification pass over an existing run log.
type ClassifyResult struct {
	LogPath   string
	Report    classify.Report
	Artifacts classify.Artifacts
}

// ClassifyLog re-runs classification over an existing run log without
// resetting or invoking anything. An empty path classifies the send run log.
func (r *Runner) ClassifyLog(ctx context.Context, logPath string) (*ClassifyResult, error) {
	if strings.TrimSpace(logPath) == "" {
		logPath = r.cfg.SendLogPath()
	}
	result := &ClassifyResult{LogPath: logPath}

	err := r.run(ctx, "classify", func(ctx context.Context, logger *slog.Logger) error {
		return r.step(ctx, logger, "classify", func(context.Context) error {
			lines, err := runlog.ReadLines(logPath)
			if err != nil {
				return err
			}
			classified := r.rules().Classify(lines)
			artifacts, err := classify.Persist(classified, r.persistOptions())
			result.Report = classified.Report
			result.Artifacts = artifacts
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
