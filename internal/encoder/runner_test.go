package encoder

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func skipIfNoShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping test")
	}
}

func TestNewExecRunnerMissingBinary(t *testing.T) {
	_, err := NewExecRunner("definitely-not-a-real-binary-xyz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("NewExecRunner() error = %v, want ErrNotFound", err)
	}
}

func TestRunCapturesOutput(t *testing.T) {
	skipIfNoShell(t)

	r, err := NewExecRunner("sh")
	if err != nil {
		t.Fatalf("NewExecRunner() error: %v", err)
	}

	result, err := r.Run(context.Background(), "-c", "echo one; echo two 1>&2")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(result.Output) != 2 {
		t.Fatalf("Output = %v, want two lines", result.Output)
	}
	if !strings.HasPrefix(result.Cmdline, "sh -c") {
		t.Errorf("Cmdline = %q, want the invoked command line", result.Cmdline)
	}
	if !strings.Contains(result.Log(), "one") || !strings.Contains(result.Log(), result.Cmdline) {
		t.Error("Log() should contain the command line and captured output")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	skipIfNoShell(t)

	r, err := NewExecRunner("sh")
	if err != nil {
		t.Fatalf("NewExecRunner() error: %v", err)
	}

	result, err := r.Run(context.Background(), "-c", "echo broken pipe; exit 3")
	if !errors.Is(err, ErrExitStatus) {
		t.Fatalf("Run() error = %v, want ErrExitStatus", err)
	}
	if len(result.Output) == 0 || result.Output[0] != "broken pipe" {
		t.Errorf("Output = %v, should carry everything the process printed", result.Output)
	}
}

func TestRunOverlongOutputLine(t *testing.T) {
	skipIfNoShell(t)

	r, err := NewExecRunner("sh")
	if err != nil {
		t.Fatalf("NewExecRunner() error: %v", err)
	}

	// A single 2 MiB line overflows the scanner buffer. The run must
	// still drain the pipe, reap the child, and surface the capture
	// failure instead of hanging until the job deadline.
	result, err := r.Run(context.Background(), "-c", "head -c 2097152 /dev/zero | tr '\\0' 'a'")
	if err == nil {
		t.Fatal("Run() should report the aborted output capture")
	}
	if !strings.Contains(err.Error(), "output capture") {
		t.Errorf("Run() error = %v, want output capture failure", err)
	}
	if !strings.Contains(result.Log(), "output capture aborted") {
		t.Errorf("Log() = %q, should note the aborted capture", result.Log())
	}
}

func TestRunCanceledContext(t *testing.T) {
	skipIfNoShell(t)

	r, err := NewExecRunner("sh")
	if err != nil {
		t.Fatalf("NewExecRunner() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, "-c", "sleep 10"); err == nil {
		t.Error("Run() with canceled context should fail")
	}
}
