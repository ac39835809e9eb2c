// Package tool runs external command-line programs (ffmpeg, ffprobe) and
// captures their output. All process execution in audiobench goes through
// the [Runner] interface so callers can be tested without real binaries.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// stderrTailLines bounds how much of a failing tool's stderr is kept in an ExitError.
const stderrTailLines = 20

// waitDelay caps how long Run waits for output pipes after the process is
// killed, in case a grandchild keeps them open.
const waitDelay = 2 * time.Second

// Result holds the captured output of a single invocation.
type Result struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
}

// Runner executes an external program and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExitError reports a process that ran but exited with a non-zero status.
type ExitError struct {
	Name       string
	ExitCode   int
	StderrTail string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
	if e.StderrTail != "" {
		msg += ": " + e.StderrTail
	}
	return msg
}

// ExecRunner runs programs via os/exec.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero waits indefinitely.
	Timeout time.Duration
	// Tee, when set, receives a live copy of each process's stderr.
	Tee io.Writer
}

// Run starts name with args, captures stdout and stderr, and waits for it
// to exit. A non-zero exit yields *ExitError alongside the partial Result;
// a failure to start (binary missing, permission) is returned unwrapped.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Tee)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w", name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Name: name, ExitCode: res.ExitCode, StderrTail: Tail(res.Stderr, stderrTailLines)}
	}
	return res, fmt.Errorf("%s: %w", name, err)
}

// LookPath reports whether name resolves to an executable.
func LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

// Tail returns the last n non-empty lines of s joined by " | ".
func Tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}
