package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"maskctl/internal/logging"
	"maskctl/internal/maskedemail"
	"maskctl/internal/services"
)

// SessionDirPrefix starts the name of every scratch directory.
const SessionDirPrefix = "session-"

// VCS is the version-control tool used for checkpoints.
type VCS interface {
	Clone(ctx context.Context, remote, dir string) error
	Init(ctx context.Context, dir string) error
	IsDirty(ctx context.Context, dir string) (bool, error)
	Add(ctx context.Context, dir, file string) error
	Commit(ctx context.Context, dir, message string) error
	CurrentBranch(ctx context.Context, dir string) (string, error)
	Push(ctx context.Context, dir, branch string) error
}

// Editor mutates dir/file in place and returns once the user is done.
type Editor interface {
	Edit(ctx context.Context, dir, file string) error
}

// Options configures a Coordinator.
type Options struct {
	BaseDir  string
	FileName string
	// Remote is an optional git remote cloned into each scratch directory.
	Remote       string
	Numbered     bool
	CommitBefore string
	CommitAfter  string
}

// Result describes a finished edit session.
type Result struct {
	SessionID string
	Dir       string
	// Text is the edited file content, ready for maskedemail.Parse.
	Text         string
	Changed      bool
	Checkpointed bool
	Pushed       bool
	Branch       string
}

// Coordinator runs edit sessions. vcs may be nil, in which case the scratch
// directory is a plain directory without checkpoints.
type Coordinator struct {
	opts   Options
	vcs    VCS
	editor Editor
	logger *slog.Logger
}

// NewCoordinator validates opts and returns a Coordinator.
func NewCoordinator(opts Options, vcs VCS, editor Editor, logger *slog.Logger) (*Coordinator, error) {
	if strings.TrimSpace(opts.BaseDir) == "" {
		return nil, errors.New("staging base directory required")
	}
	if strings.TrimSpace(opts.FileName) == "" || filepath.Base(opts.FileName) != opts.FileName {
		return nil, fmt.Errorf("staging file name %q must be a plain file name", opts.FileName)
	}
	if editor == nil {
		return nil, errors.New("editor required")
	}
	if opts.Remote != "" && vcs == nil {
		return nil, errors.New("a git remote requires version control")
	}
	if opts.CommitBefore == "" {
		opts.CommitBefore = "snapshot before edit"
	}
	if opts.CommitAfter == "" {
		opts.CommitAfter = "edit masked emails"
	}
	return &Coordinator{
		opts:   opts,
		vcs:    vcs,
		editor: editor,
		logger: logging.NewComponentLogger(logger, "staging"),
	}, nil
}

// RunEditSession serializes records into a fresh scratch directory, lets the
// user edit them and returns the edited text. The scratch directory is
// removed before returning, whatever the outcome.
func (c *Coordinator) RunEditSession(ctx context.Context, records []maskedemail.Record) (*Result, error) {
	sessionID, ok := services.SessionIDFromContext(ctx)
	if !ok {
		sessionID = uuid.NewString()
		ctx = services.WithSessionID(ctx, sessionID)
	}
	logger := logging.WithContext(ctx, c.logger)

	lock, err := AcquireLock(c.opts.BaseDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release staging lock", logging.Error(err))
		}
	}()

	dir := filepath.Join(c.opts.BaseDir, SessionDirPrefix+sessionID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, services.Wrap(services.ErrProcess, "staging", "create", "scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logging.WarnWithContext(logger, "failed to remove scratch directory", "staging_cleanup_failed",
				logging.String("dir", dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run 'maskctl staging clean'"),
				logging.String(logging.FieldImpact, "edited aliases remain on disk"),
			)
		}
	}()

	result := &Result{SessionID: sessionID, Dir: dir}
	if err := c.prepare(ctx, dir, result); err != nil {
		return nil, err
	}

	written := maskedemail.SerializeWith(records, maskedemail.SerializeOptions{Numbered: c.opts.Numbered})
	path := filepath.Join(dir, c.opts.FileName)
	if err := os.WriteFile(path, []byte(written), 0o600); err != nil {
		return nil, services.Wrap(services.ErrProcess, "staging", "write", c.opts.FileName, err)
	}
	logger.Debug("staged records", logging.Int("records", len(records)), logging.String("path", path))

	if err := c.checkpointBefore(ctx, dir, result); err != nil {
		return nil, err
	}

	logger.Info("waiting for editor", logging.String("path", path))
	if err := c.editor.Edit(services.WithStep(ctx, "edit"), dir, c.opts.FileName); err != nil {
		return nil, services.Wrap(services.ErrProcess, "staging", "edit", "editor failed", err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrProcess, "staging", "read", c.opts.FileName, err)
	}
	result.Text = string(edited)
	result.Changed = result.Text != written

	if err := c.checkpointAfter(ctx, dir, result); err != nil {
		return nil, err
	}
	logger.Info("edit session finished",
		logging.Bool("changed", result.Changed),
		logging.Bool("pushed", result.Pushed),
	)
	return result, nil
}

func (c *Coordinator) prepare(ctx context.Context, dir string, result *Result) error {
	if c.vcs == nil {
		return nil
	}
	ctx = services.WithStep(ctx, "stage")
	if c.opts.Remote == "" {
		if err := c.vcs.Init(ctx, dir); err != nil {
			return services.Wrap(services.ErrProcess, "staging", "init", "", err)
		}
		return nil
	}
	if err := c.vcs.Clone(ctx, c.opts.Remote, dir); err != nil {
		return services.Wrap(services.ErrProcess, "staging", "clone", c.opts.Remote, err)
	}
	branch, err := c.vcs.CurrentBranch(ctx, dir)
	if err != nil {
		return services.Wrap(services.ErrProcess, "staging", "clone", "resolve branch", err)
	}
	result.Branch = branch
	return nil
}

// checkpointBefore commits the freshly written file when it differs from
// the clone, and always for a local-only repository.
func (c *Coordinator) checkpointBefore(ctx context.Context, dir string, result *Result) error {
	if c.vcs == nil {
		return nil
	}
	ctx = services.WithStep(ctx, "stage")
	if c.opts.Remote != "" {
		dirty, err := c.vcs.IsDirty(ctx, dir)
		if err != nil {
			return services.Wrap(services.ErrProcess, "staging", "status", "", err)
		}
		if !dirty {
			return nil
		}
	}
	if err := c.commit(ctx, dir, c.opts.CommitBefore); err != nil {
		return err
	}
	result.Checkpointed = true
	return nil
}

// checkpointAfter commits and pushes the edited file when a remote is set
// and the user changed something.
func (c *Coordinator) checkpointAfter(ctx context.Context, dir string, result *Result) error {
	if c.vcs == nil || c.opts.Remote == "" || !result.Changed {
		return nil
	}
	ctx = services.WithStep(ctx, "publish")
	if err := c.commit(ctx, dir, c.opts.CommitAfter); err != nil {
		return err
	}
	if err := c.vcs.Push(ctx, dir, result.Branch); err != nil {
		return services.Wrap(services.ErrProcess, "staging", "push", result.Branch, err)
	}
	result.Pushed = true
	return nil
}

func (c *Coordinator) commit(ctx context.Context, dir, message string) error {
	if err := c.vcs.Add(ctx, dir, c.opts.FileName); err != nil {
		return services.Wrap(services.ErrProcess, "staging", "add", c.opts.FileName, err)
	}
	if err := c.vcs.Commit(ctx, dir, message); err != nil {
		return services.Wrap(services.ErrProcess, "staging", "commit", message, err)
	}
	return nil
}
