package invoker

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"
)

type stubExecutor struct {
	name        string
	args        []string
	err         error
	hadDeadline bool
	lines       []string
}

func (s *stubExecutor) Run(ctx context.Context, name string, args []string, onLine func(string)) error {
	s.name = name
	s.args = args
	_, s.hadDeadline = ctx.Deadline()
	for _, line := range s.lines {
		onLine(line)
	}
	return s.err
}

func TestInvokeSplitsCommandAndAppendsArgs(t *testing.T) {
	stub := &stubExecutor{}
	runner := New(nil, 0, WithExecutor(stub))

	if err := runner.Invoke(context.Background(), "python send_applies.py --search", "query", "--test"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if stub.name != "python" {
		t.Fatalf("name = %q", stub.name)
	}
	want := []string{"send_applies.py", "--search", "query", "--test"}
	if len(stub.args) != len(want) {
		t.Fatalf("args = %v", stub.args)
	}
	for i := range want {
		if stub.args[i] != want[i] {
			t.Fatalf("args = %v, want %v", stub.args, want)
		}
	}
}

func TestInvokeRejectsEmptyCommand(t *testing.T) {
	runner := New(nil, 0, WithExecutor(&stubExecutor{}))

	if err := runner.Invoke(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestInvokePreservesChildExitCode(t *testing.T) {
	stub := &stubExecutor{err: &ExitError{Command: "applier", Code: 3}}
	runner := New(nil, 0, WithExecutor(stub))

	err := runner.Invoke(context.Background(), "applier")
	var exit *ExitError
	if !errors.As(err, &exit) || exit.Code != 3 {
		t.Fatalf("expected ExitError code 3, got %v", err)
	}
	if ExitCode(err) != 3 {
		t.Fatalf("ExitCode = %d", ExitCode(err))
	}
}

func TestExitCodeMapsGenericErrors(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatal("nil error must map to 0")
	}
	if ExitCode(errors.New("boom")) != 1 {
		t.Fatal("generic error must map to 1")
	}
}

func TestInvokeAppliesTimeout(t *testing.T) {
	stub := &stubExecutor{}
	runner := New(nil, 30, WithExecutor(stub))

	if err := runner.Invoke(context.Background(), "applier"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !stub.hadDeadline {
		t.Fatal("expected deadline on execution context")
	}

	stub = &stubExecutor{}
	runner = New(nil, 0, WithExecutor(stub))
	if err := runner.Invoke(context.Background(), "applier"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if stub.hadDeadline {
		t.Fatal("zero timeout must not set a deadline")
	}
}

func TestCommandExecutorReportsExitStatus(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	runner := New(nil, 10)

	err := runner.Invoke(context.Background(), "sh -c", "exit 7")
	var exit *ExitError
	if !errors.As(err, &exit) || exit.Code != 7 {
		t.Fatalf("expected ExitError code 7, got %v", err)
	}

	if err := runner.Invoke(context.Background(), "sh -c", "exit 0"); err != nil {
		t.Fatalf("Invoke successful command: %v", err)
	}
}

func TestCommandExecutorForwardsOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var mu sync.Mutex
	var lines []string
	executor := commandExecutor{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := executor.Run(ctx, "sh", []string{"-c", "echo out; echo err >&2"}, func(line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 forwarded lines, got %v", lines)
	}
}
