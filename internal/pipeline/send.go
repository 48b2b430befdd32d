package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hhapply/internal/applier"
	"hhapply/internal/blacklist"
	"hhapply/internal/classify"
	"hhapply/internal/hh"
	"hhapply/internal/invoker"
	"hhapply/internal/logging"
	"hhapply/internal/notion"
	"hhapply/internal/queries"
	"hhapply/internal/runlog"
)

// Mode selects which vacancy listing the send pipeline walks.
type Mode string

const (
	// ModeQuery walks the configured search query.
	ModeQuery Mode = "query"
	// ModeSimilar walks vacancies similar to the configured resume.
	ModeSimilar Mode = "similar"
)

// ParseMode maps a CLI argument onto a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeQuery:
		return ModeQuery, nil
	case ModeSimilar:
		return ModeSimilar, nil
	}
	return "", fmt.Errorf("unknown send mode %q (expected query or similar)", value)
}

// SendResult reports what one send run did.
type SendResult struct {
	LogPath string
	// Outcomes holds the structured per-vacancy results of a native run.
	// External runs leave it nil; their results live only in the run log.
	Outcomes []applier.Outcome
	// Classified reports whether the classification step ran (it is skipped
	// for test runs).
	Classified bool
	Report     classify.Report
	Artifacts  classify.Artifacts
}

// Send runs the apply chain: reset the send run log, walk the listing in the
// selected mode, then classify the run log into the review artifacts. Test
// runs stop after the walk. When [external] send_command is configured the
// walk is delegated to that command and classification reads the run log it
// wrote.
func (r *Runner) Send(ctx context.Context, mode Mode, testRun bool) (*SendResult, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	result := &SendResult{LogPath: r.cfg.SendLogPath()}
	external := strings.TrimSpace(r.cfg.External.SendCommand)

	err := r.run(ctx, "send", func(ctx context.Context, logger *slog.Logger) error {
		if err := r.step(ctx, logger, "reset_log", func(context.Context) error {
			return runlog.Reset(result.LogPath)
		}); err != nil {
			return err
		}

		if err := r.step(ctx, logger, "invoke", func(ctx context.Context) error {
			if external != "" {
				args := []string{"--search", string(mode)}
				if testRun {
					args = append(args, "--test")
				}
				return invoker.New(logger, r.cfg.External.CommandTimeout).Invoke(ctx, external, args...)
			}
			outcomes, err := r.runApplier(ctx, logger, mode, testRun)
			result.Outcomes = outcomes
			return err
		}); err != nil {
			return err
		}

		if testRun {
			return nil
		}
		return r.step(ctx, logger, "classify", func(context.Context) error {
			rules := r.rules()
			var classified classify.Result
			if external != "" {
				lines, err := runlog.ReadLines(result.LogPath)
				if err != nil {
					return err
				}
				classified = rules.Classify(lines)
			} else {
				classified = rules.FromRecords(applier.Records(result.Outcomes))
			}
			artifacts, err := classify.Persist(classified, r.persistOptions())
			result.Classified = true
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

// runApplier assembles and runs the native engine for one send invocation.
func (r *Runner) runApplier(ctx context.Context, logger *slog.Logger, mode Mode, testRun bool) ([]applier.Outcome, error) {
	client, err := hh.FromConfig(r.cfg)
	if err != nil {
		return nil, err
	}

	var source applier.VacancySource
	switch mode {
	case ModeSimilar:
		source = applier.SimilarSource{Client: client, ResumeID: r.cfg.HH.ResumeID}
	case ModeQuery:
		query, err := queries.Find(r.cfg.Apply.QueriesPath, r.cfg.Apply.Query)
		if err != nil {
			return nil, err
		}
		logger.Info("search query selected", logging.String("query", query.Name))
		source = applier.QuerySource{Client: client, Query: query}
	default:
		return nil, fmt.Errorf("unknown send mode %q", mode)
	}

	recorder, err := notion.NewRecorder(r.cfg)
	if err != nil {
		return nil, err
	}

	writer, err := runlog.NewWriter(r.cfg.SendLogPath())
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	engine, err := applier.New(applier.Options{
		Source:      source,
		Sender:      client,
		Recorder:    recorder,
		RunLog:      writer,
		Logger:      logger,
		Blacklist:   blacklist.New(r.cfg.Blacklist.Words, r.cfg.Blacklist.IDs),
		ResumeID:    r.cfg.HH.ResumeID,
		CoverLetter: r.cfg.Apply.CoverLetter,
		MaxPages:    r.cfg.Apply.MaxPages,
		TestRun:     testRun,
		Now:         r.now,
	})
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx)
}
