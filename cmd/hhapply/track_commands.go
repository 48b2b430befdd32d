package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newRejectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rejections",
		Short: "Flip rejected applications to Unsuccessful in the tracker",
		Long: `Rejections resets its run log, walks every tracker page still marked
Applied, checks the negotiation state on hh.ru, and flips discarded ones to
Unsuccessful. Requires the Notion integration unless [external]
rejections_command is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			external := strings.TrimSpace(cfg.External.RejectionsCommand) != ""
			if !external {
				if err := cfg.ValidateHH(); err != nil {
					return err
				}
			}

			runner, err := ctx.ensureRunner()
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := runner.Rejections(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run log: %s\n", cfg.RejectionsLogPath())
			if !external {
				fmt.Fprintf(out, "Checked %d applied pages: %d rejected, %d failed\n",
					summary.Checked, summary.Rejected, summary.Failed)
			}
			return nil
		},
	}
}

func newManualCommand(ctx *commandContext) *cobra.Command {
	var sinceArg string
	var testRun bool

	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Record manually-sent applications in the tracker",
		Long: `Manual walks the hh.ru negotiation history newest first and records every
negotiation created at or after --date as a tracker page. Use it after
applying outside this tool. A test run only logs what it would record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			since, err := parseSinceDate(sinceArg)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			external := strings.TrimSpace(cfg.External.ManualCommand) != ""
			if !external {
				if err := cfg.ValidateHH(); err != nil {
					return err
				}
			}

			runner, err := ctx.ensureRunner()
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := runner.Manual(runCtx, since, testRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run log: %s\n", cfg.ManualLogPath())
			if !external {
				fmt.Fprintf(out, "Seen %d negotiations since %s: %d added, %d skipped, %d failed\n",
					summary.Seen, since.Format(time.RFC3339), summary.Added, summary.Skipped, summary.Failed)
				if testRun {
					fmt.Fprintln(out, "Test run: nothing was recorded")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sinceArg, "date", "d", "", "Record negotiations created at or after this time (ISO 8601)")
	cmd.Flags().BoolVarP(&testRun, "test", "t", false, "Log what would be recorded without writing")
	return cmd
}

// sinceLayouts lists the accepted --date shapes, broadest first. Zoneless
// values are read in local time, matching how the dates in the negotiation
// history are entered by hand.
var sinceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseSinceDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("--date is required (e.g. 2025-01-01 or 2025-01-01T12:00:00+05:00)")
	}
	for _, layout := range sinceLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized --date %q: use ISO 8601, e.g. 2025-01-01T12:00:00+05:00", value)
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Withdraw applications marked Wrong in the tracker",
		Long: `Remove resets its run log, withdraws every negotiation whose tracker page
is marked Wrong, and archives the page once hh.ru confirms the withdrawal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			external := strings.TrimSpace(cfg.External.RemoveCommand) != ""
			if !external {
				if err := cfg.ValidateHH(); err != nil {
					return err
				}
			}

			runner, err := ctx.ensureRunner()
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := runner.Remove(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run log: %s\n", cfg.RemoveLogPath())
			if !external {
				fmt.Fprintf(out, "Withdrew %d of %d wrong applications (%d failed)\n",
					summary.Removed, summary.Candidates, summary.Failed)
			}
			return nil
		},
	}
}

func newMessagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <negotiation-id>",
		Short: "Copy a negotiation chat onto its tracker page",
		Long: `Messages fetches the chat of one negotiation from hh.ru and appends it to
the tracker page recording that application. The first message is the cover
letter the page already holds, so it is dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateHH(); err != nil {
				return err
			}

			runner, err := ctx.ensureRunner()
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := runner.Messages(runCtx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d messages to page %s\n", summary.Copied, summary.PageID)
			return nil
		},
	}
}
