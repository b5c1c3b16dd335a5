// Package encoder invokes the external encoder binary and captures its
// output. Success and failure are explicit at the call site; there are
// no progress callbacks.
package encoder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/atlastrail/render/internal/logger"
)

var (
	ErrNotFound   = errors.New("encoder: binary not found in PATH")
	ErrExitStatus = errors.New("encoder: non-zero exit")
)

// Result holds the invoked command line and the captured combined
// stdout/stderr, line by line.
type Result struct {
	Cmdline string
	Output  []string
}

func (r *Result) Log() string {
	var b strings.Builder
	b.WriteString(r.Cmdline)
	for _, line := range r.Output {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

type Runner interface {
	Run(ctx context.Context, args ...string) (*Result, error)
}

// ExecRunner runs the encoder as a subprocess.
type ExecRunner struct {
	path string
}

var _ Runner = (*ExecRunner)(nil)

func NewExecRunner(path string) (*ExecRunner, error) {
	if path == "" {
		path = "ffmpeg"
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return &ExecRunner{path: path}, nil
}

// Run executes the encoder and blocks until exit, streaming every output
// line to the context logger. On a non-zero exit the Result still carries
// everything the process printed.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (*Result, error) {
	log := logger.FromContext(ctx)

	cmd := exec.CommandContext(ctx, r.path, args...)
	result := &Result{Cmdline: r.path + " " + strings.Join(args, " ")}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, fmt.Errorf("encoder stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	log.Debug("encoder starting", "cmdline", result.Cmdline)
	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("encoder start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		result.Output = append(result.Output, line)
		log.Debug("encoder output", "line", line)
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so the child is not left blocked on a full
		// pipe while we wait for it to exit.
		_, _ = io.Copy(io.Discard, stdout)
		result.Output = append(result.Output, "output capture aborted: "+scanErr.Error())
		log.Error("encoder output capture failed", "error", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Error("encoder failed", "exit_code", exitErr.ExitCode(), "cmdline", result.Cmdline)
			return result, fmt.Errorf("%w: code %d", ErrExitStatus, exitErr.ExitCode())
		}
		return result, fmt.Errorf("encoder wait: %w", err)
	}
	if scanErr != nil {
		return result, fmt.Errorf("encoder output capture: %w", scanErr)
	}

	log.Debug("encoder finished", "lines", len(result.Output))
	return result, nil
}
