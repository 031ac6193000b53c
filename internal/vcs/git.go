package vcs

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"maskctl/internal/logging"
	"maskctl/internal/services"
)

const (
	fallbackUserName  = "maskctl"
	fallbackUserEmail = "maskctl@localhost"
)

// Option configures Git.
type Option func(*Git)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(g *Git) {
		if exec != nil {
			g.exec = exec
		}
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Git) {
		g.logger = logging.NewComponentLogger(logger, "git")
	}
}

// Git runs git subcommands inside a working directory.
type Git struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// New constructs a Git runner for binary.
func New(binary string, opts ...Option) (*Git, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("git binary required")
	}
	g := &Git{binary: binary, exec: commandExecutor{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Clone clones remote into dir, which must be empty.
func (g *Git) Clone(ctx context.Context, remote, dir string) error {
	if _, err := g.run(ctx, dir, "clone", "--quiet", remote, "."); err != nil {
		return err
	}
	return g.ensureIdentity(ctx, dir)
}

// Init creates an empty repository in dir.
func (g *Git) Init(ctx context.Context, dir string) error {
	if _, err := g.run(ctx, dir, "init", "--quiet"); err != nil {
		return err
	}
	return g.ensureIdentity(ctx, dir)
}

// IsDirty reports whether the working tree has uncommitted or untracked changes.
func (g *Git) IsDirty(ctx context.Context, dir string) (bool, error) {
	out, err := g.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Add stages file.
func (g *Git) Add(ctx context.Context, dir, file string) error {
	_, err := g.run(ctx, dir, "add", "--", file)
	return err
}

// Commit records staged changes with message.
func (g *Git) Commit(ctx context.Context, dir, message string) error {
	_, err := g.run(ctx, dir, "commit", "--quiet", "-m", message)
	return err
}

// CurrentBranch returns the checked-out branch name.
func (g *Git) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", services.Wrap(services.ErrProcess, "git", "branch", "no branch checked out", nil)
	}
	return branch, nil
}

// Push publishes branch to origin atomically.
func (g *Git) Push(ctx context.Context, dir, branch string) error {
	_, err := g.run(ctx, dir, "push", "--atomic", "origin", branch)
	return err
}

// ensureIdentity sets a repository-local author when none is configured,
// so commits in fresh scratch repositories never fail for lack of one.
func (g *Git) ensureIdentity(ctx context.Context, dir string) error {
	if out, err := g.run(ctx, dir, "config", "user.email"); err == nil && strings.TrimSpace(out) != "" {
		return nil
	}
	if _, err := g.run(ctx, dir, "config", "user.name", fallbackUserName); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "config", "user.email", fallbackUserEmail)
	return err
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	g.logger.Debug("git command", logging.String("dir", dir), logging.String("args", strings.Join(args, " ")))
	out, err := g.exec.Run(ctx, dir, g.binary, args)
	if err != nil {
		var perr *services.ProcessError
		if errors.As(err, &perr) {
			return out, err
		}
		return out, &services.ProcessError{Command: g.binary, Args: args, Err: err}
	}
	return out, nil
}
