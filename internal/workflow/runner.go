package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"maskctl/internal/history"
	"maskctl/internal/jmap"
	"maskctl/internal/logging"
	"maskctl/internal/maskedemail"
	"maskctl/internal/services"
	"maskctl/internal/staging"
)

// RecordStore is the remote masked e-mail store.
type RecordStore interface {
	Get(ctx context.Context) ([]maskedemail.Record, error)
	Set(ctx context.Context, update maskedemail.Changeset) (*jmap.SetResult, error)
}

// Stager runs the interactive edit step.
type Stager interface {
	RunEditSession(ctx context.Context, records []maskedemail.Record) (*staging.Result, error)
}

// History records session outcomes. *history.Store satisfies it.
type History interface {
	Begin(ctx context.Context, id string, startedAt time.Time, recordCount int, remote string) error
	RecordChanges(ctx context.Context, sessionID string, changes []history.Change) error
	Finish(ctx context.Context, id string, finishedAt time.Time, outcome history.Outcome) error
}

// Confirmer asks the user whether to submit preview. Returning false
// declines without error.
type Confirmer func(ctx context.Context, preview Preview) (bool, error)

// Options tunes a single Edit call.
type Options struct {
	// DryRun stops after parsing and never calls Set.
	DryRun bool
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
}

// Report summarizes an edit session for the caller.
type Report struct {
	SessionID string
	Records   int
	Preview   Preview
	Status    history.Status
	Result    *jmap.SetResult
	Pushed    bool
	// RejectedPath holds the edited text when parsing failed.
	RejectedPath string
}

// Runner wires the edit session collaborators together.
type Runner struct {
	store     RecordStore
	stager    Stager
	history   History
	confirm   Confirmer
	rejectDir string
	remote    string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithHistory enables session history.
func WithHistory(h History) Option {
	return func(r *Runner) { r.history = h }
}

// WithConfirmer sets the confirmation prompt.
func WithConfirmer(c Confirmer) Option {
	return func(r *Runner) { r.confirm = c }
}

// WithRejectDir sets where edited text is saved when it cannot be parsed.
func WithRejectDir(dir string) Option {
	return func(r *Runner) { r.rejectDir = dir }
}

// WithRemote records the staging remote in history rows.
func WithRemote(remote string) Option {
	return func(r *Runner) { r.remote = remote }
}

// WithClock overrides time.Now (for tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(store RecordStore, stager Stager, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:  store,
		stager: stager,
		logger: logging.NewComponentLogger(logger, "workflow"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Edit runs one full session. Nothing is submitted unless every step up to
// and including confirmation succeeded.
func (r *Runner) Edit(ctx context.Context, opts Options) (*Report, error) {
	sessionID, ok := services.SessionIDFromContext(ctx)
	if !ok {
		sessionID = uuid.NewString()
		ctx = services.WithSessionID(ctx, sessionID)
	}
	logger := logging.WithContext(ctx, r.logger)
	report := &Report{SessionID: sessionID}
	started := r.now()

	records, err := r.store.Get(services.WithStep(ctx, "fetch"))
	if err != nil {
		return report, err
	}
	report.Records = len(records)
	logger.Info("fetched masked emails", logging.Int("count", len(records)))

	tracked := r.history != nil
	if tracked {
		if err := r.history.Begin(ctx, sessionID, started, len(records), r.remote); err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "session will not appear in 'maskctl history'"),
			)
			tracked = false
		}
	}

	err = r.edit(ctx, logger, records, opts, report)
	if tracked {
		r.finish(ctx, logger, report, err)
	}
	return report, err
}

func (r *Runner) edit(ctx context.Context, logger *slog.Logger, records []maskedemail.Record, opts Options, report *Report) error {
	staged, err := r.stager.RunEditSession(services.WithStep(ctx, "stage"), records)
	if err != nil {
		return err
	}
	report.Pushed = staged.Pushed

	changes, err := maskedemail.Parse(staged.Text, records)
	if err != nil {
		report.RejectedPath = r.saveRejected(logger, report.SessionID, staged.Text)
		return err
	}
	report.Preview = NewPreview(records, changes)
	logger.Info("parsed edits", logging.Int("changed_records", len(changes)))

	switch {
	case len(changes) == 0:
		report.Status = history.StatusNoChanges
		return nil
	case opts.DryRun:
		report.Status = history.StatusDryRun
		return nil
	case !opts.AssumeYes && r.confirm != nil:
		ok, err := r.confirm(ctx, report.Preview)
		if err != nil {
			return err
		}
		if !ok {
			report.Status = history.StatusDeclined
			return nil
		}
	}

	result, err := r.store.Set(services.WithStep(ctx, "submit"), changes)
	if err != nil {
		return err
	}
	report.Result = result
	report.Status = history.StatusSubmitted
	logger.Info("submitted changes",
		logging.Int("updated", len(result.Updated)),
		logging.Int("not_updated", len(result.NotUpdated)),
	)
	for id, setErr := range result.NotUpdated {
		logging.WarnWithContext(logger, "record not updated", "set_rejected",
			logging.String("record_id", id),
			logging.String("reason", setErr.Type),
			logging.String(logging.FieldImpact, "alias keeps its previous values"),
		)
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, report *Report, runErr error) {
	outcome := history.Outcome{
		Status:       report.Status,
		ChangedCount: report.Preview.Records(),
		Pushed:       report.Pushed,
	}
	if report.Result != nil {
		outcome.UpdatedCount = len(report.Result.Updated)
		outcome.NotUpdatedCount = len(report.Result.NotUpdated)
	}
	if runErr != nil {
		outcome.Status = history.StatusFailed
		outcome.ErrorKind = services.Kind(runErr)
		outcome.ErrorMessage = runErr.Error()
	}

	// History writes must land even when ctx was cancelled mid-session.
	hctx := context.WithoutCancel(ctx)
	if len(report.Preview.Changes) > 0 {
		if err := r.history.RecordChanges(hctx, report.SessionID, report.Preview.HistoryChanges(report.Result)); err != nil {
			logger.Warn("failed to record session changes", logging.Error(err))
		}
	}
	if err := r.history.Finish(hctx, report.SessionID, r.now(), outcome); err != nil {
		logger.Warn("failed to finish history entry", logging.Error(err))
	}
}

func (r *Runner) saveRejected(logger *slog.Logger, sessionID, text string) string {
	if r.rejectDir == "" {
		return ""
	}
	if err := os.MkdirAll(r.rejectDir, 0o700); err != nil {
		logger.Warn("failed to create reject directory", logging.Error(err))
		return ""
	}
	path := filepath.Join(r.rejectDir, fmt.Sprintf("rejected-%s.txt", sessionID))
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		logger.Warn("failed to save rejected edits", logging.Error(err))
		return ""
	}
	logger.Info("saved edits that could not be parsed", logging.String("path", path))
	return path
}
