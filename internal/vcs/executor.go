package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"maskctl/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string) (string, error)
}

type commandExecutor struct{}

// Run executes binary in dir and returns its stdout. A command that cannot
// start or exits non-zero is reported as *services.ProcessError.
func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		perr := &services.ProcessError{
			Command: binary,
			Args:    args,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), perr
	}
	return stdout.String(), nil
}
