package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"hhapply/internal/applier"
	"hhapply/internal/classify"
	"hhapply/internal/pipeline"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var testRun bool
	var queryName string

	cmd := &cobra.Command{
		Use:   "send <query|similar>",
		Short: "Respond to vacancies and classify the run log",
		Long: `Send resets the apply run log, walks the selected vacancy listing while
sending responses, then classifies the run log into the dated review
artifacts. "query" walks a saved search from the queries file; "similar"
walks vacancies hh.ru suggests for the configured resume.

A test run walks and logs without sending anything and skips the
classification step. When [external] send_command is configured the walk is
delegated to that command with the same --search/--test flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pipeline.ParseMode(args[0])
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if name := strings.TrimSpace(queryName); name != "" {
				cfg.Apply.Query = name
			}
			if strings.TrimSpace(cfg.External.SendCommand) == "" {
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

			result, err := runner.Send(runCtx, mode, testRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run log: %s\n", result.LogPath)
			printOutcomeCounts(out, result.Outcomes)
			if testRun {
				fmt.Fprintln(out, "Test run: no responses sent; classification skipped")
				return nil
			}
			if result.Classified {
				printClassification(out, result.Report, result.Artifacts)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&testRun, "test", "t", false, "Walk and log without sending responses")
	cmd.Flags().StringVarP(&queryName, "query", "q", "", "Named search from the queries file (query mode only)")
	return cmd
}

// outcomeLabels fixes the display order of walk outcomes in the summary
// table.
var outcomeLabels = []struct {
	status applier.Status
	label  string
}{
	{applier.StatusApplied, "Applied"},
	{applier.StatusTestRun, "Test run"},
	{applier.StatusSkippedWords, "Skipped (blacklist words)"},
	{applier.StatusSkippedID, "Skipped (blacklist id)"},
	{applier.StatusProcessTest, "Employer test required"},
	{applier.StatusExternalApply, "External apply required"},
	{applier.StatusFailed, "Failed"},
	{applier.StatusLimitExceeded, "Daily limit exceeded"},
}

func printOutcomeCounts(out io.Writer, outcomes []applier.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	counts := make(map[applier.Status]int, len(outcomeLabels))
	for _, outcome := range outcomes {
		counts[outcome.Status]++
	}

	rows := make([][]string, 0, len(outcomeLabels))
	for _, entry := range outcomeLabels {
		if count := counts[entry.status]; count > 0 {
			rows = append(rows, []string{entry.label, strconv.Itoa(count)})
		}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Outcome", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}

func printClassification(out io.Writer, report classify.Report, artifacts classify.Artifacts) {
	fmt.Fprintf(out, "Classified %d lines: %d manual, %d skipped, %d malformed\n",
		report.Total, report.Manual, report.Skipped, report.Malformed)
	fmt.Fprintf(out, "Manual review artifact: %s (+%d)\n", artifacts.ManualPath, artifacts.ManualAdded)
	fmt.Fprintf(out, "Skipped artifact: %s (+%d new)\n", artifacts.SkippedPath, artifacts.SkippedAdded)
}
