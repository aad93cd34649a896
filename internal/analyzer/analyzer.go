package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrNoCommand is returned when no analyzer command is configured.
	ErrNoCommand = errors.New("no analyzer command configured")
	// ErrAnalyzerExit covers start failures, non-zero exits and timeouts.
	ErrAnalyzerExit = errors.New("analyzer exited with an error")
	// ErrAnalyzerStderr is returned when the analyzer wrote anything to
	// stderr, even if it also exited zero with usable output.
	ErrAnalyzerStderr = errors.New("analyzer wrote to stderr")
)

// Runner turns a saved image into the analyzer's text output.
type Runner interface {
	Analyze(ctx context.Context, imagePath string) (string, error)
}

// Command runs an external analyzer with the image path appended as its
// last argument. The arguments are passed directly to the process; no shell
// is involved.
type Command struct {
	Args []string
	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration
}

// NewCommand returns a runner for args.
func NewCommand(args []string, timeout time.Duration) *Command {
	return &Command{
		Args:    args,
		Timeout: timeout,
	}
}

// Analyze runs the analyzer and returns its stdout verbatim.
func (c *Command) Analyze(ctx context.Context, imagePath string) (string, error) {
	if len(c.Args) == 0 {
		return "", ErrNoCommand
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.Args[1:]...), imagePath)
	cmd := exec.CommandContext(ctx, c.Args[0], args...)
	// grandchildren holding the pipes open must not stall a killed run
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	slog.Debug("Analyzer finished", "command", c.Args[0], "image", imagePath, "duration", time.Since(start), "stdout_bytes", stdout.Len(), "stderr_bytes", stderr.Len())

	if err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrAnalyzerExit, err, strings.TrimSpace(stderr.String()))
	}

	if stderr.Len() > 0 {
		return "", fmt.Errorf("%w: %s", ErrAnalyzerStderr, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
