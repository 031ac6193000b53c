package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the final state of an edit session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSubmitted Status = "submitted"
	StatusNoChanges Status = "no_changes"
	StatusDryRun    Status = "dry_run"
	StatusDeclined  Status = "declined"
	StatusFailed    Status = "failed"
)

// Session is one row of the history.
type Session struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Status          Status     `json:"status"`
	RecordCount     int        `json:"record_count"`
	ChangedCount    int        `json:"changed_count"`
	UpdatedCount    int        `json:"updated_count"`
	NotUpdatedCount int        `json:"not_updated_count"`
	Remote          string     `json:"remote,omitempty"`
	Pushed          bool       `json:"pushed"`
	ErrorKind       string     `json:"error_kind,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}

// Outcome is what Finish records about a session.
type Outcome struct {
	Status          Status
	ChangedCount    int
	UpdatedCount    int
	NotUpdatedCount int
	Pushed          bool
	ErrorKind       string
	ErrorMessage    string
}

// Change is one field edited in a session. Nil values are JSON nulls.
type Change struct {
	RecordID string  `json:"record_id"`
	Email    string  `json:"email"`
	Field    string  `json:"field"`
	OldValue *string `json:"old"`
	NewValue *string `json:"new"`
	// Outcome is "updated", "not_updated: <reason>" or empty when not submitted.
	Outcome string `json:"outcome,omitempty"`
}

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Begin inserts a running session.
func (s *Store) Begin(ctx context.Context, id string, startedAt time.Time, recordCount int, remote string) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, started_at, status, record_count, remote) VALUES (?, ?, ?, ?, ?)`,
			id, startedAt.UTC().Format(timeLayout), string(StatusRunning), recordCount, remote)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
}

// RecordChanges stores the per-field changes of a session, replacing any
// earlier rows for the same record and field.
func (s *Store) RecordChanges(ctx context.Context, sessionID string, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin changes tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO session_changes
			(session_id, record_id, email, field, old_value, new_value, outcome)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare change insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range changes {
			if _, err := stmt.ExecContext(ctx, sessionID, c.RecordID, c.Email, c.Field,
				nullString(c.OldValue), nullString(c.NewValue), c.Outcome); err != nil {
				return fmt.Errorf("insert change %s/%s: %w", c.RecordID, c.Field, err)
			}
		}
		return tx.Commit()
	})
}

// Finish marks a session as done with outcome.
func (s *Store) Finish(ctx context.Context, id string, finishedAt time.Time, outcome Outcome) error {
	return retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `UPDATE sessions SET
				finished_at = ?, status = ?, changed_count = ?, updated_count = ?,
				not_updated_count = ?, pushed = ?, error_kind = ?, error_message = ?
			WHERE id = ?`,
			finishedAt.UTC().Format(timeLayout), string(outcome.Status), outcome.ChangedCount,
			outcome.UpdatedCount, outcome.NotUpdatedCount, boolToInt(outcome.Pushed),
			outcome.ErrorKind, outcome.ErrorMessage, id)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("session %s not found", id)
		}
		return nil
	})
}

// List returns the most recent sessions, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, started_at, finished_at, status, record_count, changed_count,
		updated_count, not_updated_count, remote, pushed, error_kind, error_message
		FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Get returns one session, or nil when id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, started_at, finished_at, status, record_count,
		changed_count, updated_count, not_updated_count, remote, pushed, error_kind, error_message
		FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Changes returns the field changes of a session ordered by record and field.
func (s *Store) Changes(ctx context.Context, sessionID string) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, email, field, old_value, new_value, outcome
		FROM session_changes WHERE session_id = ? ORDER BY email, record_id, field`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		var oldValue, newValue sql.NullString
		if err := rows.Scan(&c.RecordID, &c.Email, &c.Field, &oldValue, &newValue, &c.Outcome); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.OldValue = stringPtr(oldValue)
		c.NewValue = stringPtr(newValue)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		s          Session
		startedAt  string
		finishedAt sql.NullString
		status     string
		pushed     int
	)
	if err := row.Scan(&s.ID, &startedAt, &finishedAt, &status, &s.RecordCount, &s.ChangedCount,
		&s.UpdatedCount, &s.NotUpdatedCount, &s.Remote, &pushed, &s.ErrorKind, &s.ErrorMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scan session: %w", err)
	}
	s.Status = Status(status)
	s.Pushed = pushed != 0
	started, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return s, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	s.StartedAt = started
	if finishedAt.Valid {
		finished, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return s, fmt.Errorf("parse finished_at %q: %w", finishedAt.String, err)
		}
		s.FinishedAt = &finished
	}
	return s, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
