// Package editor launches the user's text editor on the staged file.
package editor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"maskctl/internal/services"
)

// Command runs an editor program with the caller's terminal attached.
type Command struct {
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Command for argv wired to the process's standard streams.
func New(argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, services.Wrap(services.ErrConfiguration, "editor", "configure", "editor command is empty; set editor.command, VISUAL or EDITOR", nil)
	}
	return &Command{
		Argv:   append([]string(nil), argv...),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Edit opens dir/file and blocks until the editor exits. A non-zero exit is
// a *services.ProcessError.
func (c *Command) Edit(ctx context.Context, dir, file string) error {
	path := filepath.Join(dir, file)
	args := append(append([]string(nil), c.Argv[1:]...), path)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		perr := &services.ProcessError{Command: c.Argv[0], Args: args, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return perr
	}
	return nil
}

// IsTerminal reports whether stream is a file attached to a terminal.
// Terminal editors such as vim misbehave when stdin is a pipe.
func IsTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
