package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hhapply/internal/invoker"
	"hhapply/internal/runlog"
	"hhapply/internal/tracker"
)

// Rejections resets the rejection run log and flips rejected applications to
// Unsuccessful in Notion.
func (r *Runner) Rejections(ctx context.Context) (tracker.RejectionSummary, error) {
	var summary tracker.RejectionSummary
	logPath := r.cfg.RejectionsLogPath()

	err := r.run(ctx, "rejections", func(ctx context.Context, logger *slog.Logger) error {
		if err := r.step(ctx, logger, "reset_log", func(context.Context) error {
			return runlog.Reset(logPath)
		}); err != nil {
			return err
		}

		return r.step(ctx, logger, "process", func(ctx context.Context) error {
			if command := strings.TrimSpace(r.cfg.External.RejectionsCommand); command != "" {
				return invoker.New(logger, r.cfg.External.CommandTimeout).Invoke(ctx, command)
			}
			track, writer, err := r.newTracker(logger, logPath)
			if err != nil {
				return err
			}
			defer writer.Close()
			summary, err = track.ProcessRejections(ctx)
			return err
		})
	})
	return summary, err
}

// Manual resets the manual-applies run log and records negotiations created
// at or after since in Notion. Test runs only log what they would record.
func (r *Runner) Manual(ctx context.Context, since time.Time, testRun bool) (tracker.ManualSummary, error) {
	var summary tracker.ManualSummary
	logPath := r.cfg.ManualLogPath()

	err := r.run(ctx, "manual", func(ctx context.Context, logger *slog.Logger) error {
		if err := r.step(ctx, logger, "reset_log", func(context.Context) error {
			return runlog.Reset(logPath)
		}); err != nil {
			return err
		}

		return r.step(ctx, logger, "process", func(ctx context.Context) error {
			if command := strings.TrimSpace(r.cfg.External.ManualCommand); command != "" {
				args := []string{"--date", since.Format(time.RFC3339)}
				if testRun {
					args = append(args, "--test")
				}
				return invoker.New(logger, r.cfg.External.CommandTimeout).Invoke(ctx, command, args...)
			}
			track, writer, err := r.newTracker(logger, logPath)
			if err != nil {
				return err
			}
			defer writer.Close()
			summary, err = track.AddManual(ctx, since, testRun)
			return err
		})
	})
	return summary, err
}

// Remove resets the remove run log, withdraws negotiations marked Wrong in
// Notion, and archives their pages.
func (r *Runner) Remove(ctx context.Context) (tracker.RemoveSummary, error) {
	var summary tracker.RemoveSummary
	logPath := r.cfg.RemoveLogPath()

	err := r.run(ctx, "remove", func(ctx context.Context, logger *slog.Logger) error {
		if err := r.step(ctx, logger, "reset_log", func(context.Context) error {
			return runlog.Reset(logPath)
		}); err != nil {
			return err
		}

		return r.step(ctx, logger, "process", func(ctx context.Context) error {
			if command := strings.TrimSpace(r.cfg.External.RemoveCommand); command != "" {
				return invoker.New(logger, r.cfg.External.CommandTimeout).Invoke(ctx, command)
			}
			track, writer, err := r.newTracker(logger, logPath)
			if err != nil {
				return err
			}
			defer writer.Close()
			summary, err = track.RemoveWrong(ctx)
			return err
		})
	})
	return summary, err
}

// Messages copies one negotiation's messages onto its Notion page. The copier
// has no dedicated run log; its trail is the structured diagnostic log.
func (r *Runner) Messages(ctx context.Context, negotiationID string) (tracker.MessageSummary, error) {
	var summary tracker.MessageSummary

	err := r.run(ctx, "messages", func(ctx context.Context, logger *slog.Logger) error {
		return r.step(ctx, logger, "copy_messages", func(ctx context.Context) error {
			track, _, err := r.newTracker(logger, "")
			if err != nil {
				return err
			}
			summary, err = track.CopyMessages(ctx, negotiationID)
			return err
		})
	})
	return summary, err
}
