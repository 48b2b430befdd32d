package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"hhapply/internal/classify"
	"hhapply/internal/config"
	"hhapply/internal/hh"
	"hhapply/internal/logging"
	"hhapply/internal/notion"
	"hhapply/internal/runlog"
	"hhapply/internal/tracker"
)

// ErrBusy reports that another hhapply run already holds the run lock.
var ErrBusy = errors.New("another hhapply run is already in progress")

// Option adjusts a Runner.
type Option func(*Runner)

// WithNow overrides the clock used for run-log lines and artifact naming.
func WithNow(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner executes the pipelines one at a time.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *flock.Flock
	now    func() time.Time
}

// New builds a Runner over the loaded configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	runner := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		lock:   flock.New(cfg.LockPath()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// run wraps one pipeline execution: directories ensured, run lock held,
// retention sweep done, and the start/complete/failure log frame emitted.
func (r *Runner) run(ctx context.Context, name string, fn func(context.Context, *slog.Logger) error) error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return err
	}

	held, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !held {
		return ErrBusy
	}
	defer func() {
		_ = r.lock.Unlock()
	}()

	runCtx := logging.WithRunID(logging.WithPipeline(ctx, name), uuid.NewString())
	logger := logging.WithContext(runCtx, r.logger)

	logging.CleanupOldLogs(logger, r.cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: r.cfg.Paths.ResultsDir, Pattern: classify.ManualArtifactPrefix + "_*.log"},
		logging.RetentionTarget{Dir: r.cfg.Paths.ResultsDir, Pattern: classify.SkippedArtifactPrefix + "_*.log"},
	)

	start := time.Now()
	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "pipeline_start"),
	)
	if err := fn(runCtx, logger); err != nil {
		logger.Error("pipeline failed",
			logging.String(logging.FieldEventType, "pipeline_failure"),
			logging.Error(err),
		)
		return err
	}
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.Duration("run_duration", time.Since(start)),
	)
	return nil
}

// step executes one named pipeline step. The first failing step halts the
// chain; its error is returned wrapped with the step name.
func (r *Runner) step(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	stepLogger := logger.With(logging.String(logging.FieldStep, name))
	stepStart := time.Now()
	stepLogger.Info("step started",
		logging.String(logging.FieldEventType, "step_start"),
	)
	if err := fn(ctx); err != nil {
		stepLogger.Error("step failed",
			logging.String(logging.FieldEventType, "step_failure"),
			logging.Error(err),
		)
		return fmt.Errorf("%s: %w", name, err)
	}
	stepLogger.Info("step completed",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Duration("step_duration", time.Since(stepStart)),
	)
	return nil
}

// rules returns the classification rules with config overrides applied.
func (r *Runner) rules() classify.Rules {
	rules := classify.DefaultRules()
	if len(r.cfg.Classify.ManualPatterns) > 0 {
		rules.ManualPatterns = r.cfg.Classify.ManualPatterns
	}
	if strings.TrimSpace(r.cfg.Classify.SkipMarker) != "" {
		rules.SkipMarker = r.cfg.Classify.SkipMarker
	}
	return rules
}

func (r *Runner) persistOptions() classify.PersistOptions {
	return classify.PersistOptions{
		ResultsDir: r.cfg.Paths.ResultsDir,
		Now:        r.now(),
		DateLayout: r.cfg.Classify.DateLayout,
		AllowEmpty: r.cfg.Classify.AllowEmptyResult,
	}
}

// newTracker assembles a tracker over the configured HH and Notion clients.
// The returned writer is the tracker's run log; the caller closes it.
func (r *Runner) newTracker(logger *slog.Logger, logPath string) (*tracker.Tracker, *runlog.Writer, error) {
	client, err := hh.FromConfig(r.cfg)
	if err != nil {
		return nil, nil, err
	}
	recorder, err := notion.NewRecorder(r.cfg)
	if err != nil {
		return nil, nil, err
	}

	var writer *runlog.Writer
	if logPath != "" {
		writer, err = runlog.NewWriter(logPath)
		if err != nil {
			return nil, nil, err
		}
	}

	track, err := tracker.New(tracker.Options{
		HH:       client,
		Recorder: recorder,
		RunLog:   writer,
		Logger:   logger,
		Now:      r.now,
	})
	if err != nil {
		if writer != nil {
			_ = writer.Close()
		}
		return nil, nil, err
	}
	return track, writer, nil
}
