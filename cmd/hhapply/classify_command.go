package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Re-classify an existing run log into review artifacts",
		Long: `Classify re-runs the extraction over an existing run log without resetting
it or contacting hh.ru. Manual-review lines append to the day's manual
artifact; blacklist skips are deduplicated, sorted, and merged into the
day's skipped artifact.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.ensureRunner()
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			result, err := runner.ClassifyLog(runCtx, logPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run log: %s\n", result.LogPath)
			printClassification(out, result.Report, result.Artifacts)
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "Run log to classify (default: the send run log)")
	return cmd
}
