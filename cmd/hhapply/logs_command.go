package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hhapply/internal/config"
	"hhapply/internal/logging"
	"hhapply/internal/runlog"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:       "logs [send|rejections|manual|remove|diagnostic]",
		Short:     "Display a pipeline run log",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"send", "rejections", "manual", "remove", "diagnostic"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			name := "send"
			if len(args) == 1 {
				name = args[0]
			}
			path, err := pipelineLogPath(cfg, name)
			if err != nil {
				return err
			}

			initialLimit := lines
			if initialLimit < 0 {
				initialLimit = 0
			}
			initialOffset := int64(-1)
			if initialLimit == 0 {
				initialOffset = 0
			}

			runCtx := cmd.Context()
			if follow {
				var cancel context.CancelFunc
				runCtx, cancel = signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
			}

			offset := initialOffset
			limit := initialLimit
			printed := false
			for {
				result, err := runlog.Tail(runCtx, path, runlog.TailOptions{
					Offset: offset,
					Limit:  limit,
					Follow: follow,
					Wait:   time.Second,
				})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("tail %s: %w", path, err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
					printed = true
				}
				offset = result.Offset
				limit = 0
				if !follow {
					if !printed {
						fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					}
					return nil
				}
				select {
				case <-runCtx.Done():
					return nil
				default:
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}

func pipelineLogPath(cfg *config.Config, name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "send":
		return cfg.SendLogPath(), nil
	case "rejections":
		return cfg.RejectionsLogPath(), nil
	case "manual":
		return cfg.ManualLogPath(), nil
	case "remove":
		return cfg.RemoveLogPath(), nil
	case "diagnostic":
		return filepath.Join(cfg.Paths.LogDir, logging.DiagnosticLogName), nil
	}
	return "", fmt.Errorf("unknown log %q (expected send, rejections, manual, remove, or diagnostic)", name)
}
