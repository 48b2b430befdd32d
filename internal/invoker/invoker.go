// Package invoker runs configured external commands, forwarding their
// output into the diagnostic log and preserving child exit codes.
package invoker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"hhapply/internal/logging"
)

// ExitError reports a child process that finished with a non-zero status.
// The code travels up so the process exit status can mirror the child's.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// ExitCode maps an Invoke error to a process exit status. nil is 0, a child
// failure keeps its own code, anything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, name string, args []string, onLine func(string)) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(r *Runner) {
		if executor != nil {
			r.exec = executor
		}
	}
}

// Runner invokes external commands from configuration.
type Runner struct {
	logger  *slog.Logger
	timeout time.Duration
	exec    Executor
}

// New builds a Runner. timeoutSeconds of zero disables the per-command
// timeout.
func New(logger *slog.Logger, timeoutSeconds int, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{
		logger:  logger,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Invoke splits the configured command line on whitespace, appends extraArgs,
// and runs it. Child output lines land in the diagnostic log. A non-zero
// child exit surfaces as *ExitError.
func (r *Runner) Invoke(ctx context.Context, command string, extraArgs ...string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New("command is empty")
	}
	name := fields[0]
	args := append(fields[1:], extraArgs...)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Info("running external command",
		logging.String("command", name),
		logging.String("args", strings.Join(args, " ")))

	err := r.exec.Run(runCtx, name, args, func(line string) {
		r.logger.Info(line, logging.String("source", name))
	})
	if err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return err
		}
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return &ExitError{Command: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
