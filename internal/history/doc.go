// Package history keeps a local SQLite log of edit sessions.
//
// Each session row records when it ran, how many aliases it covered, what
// happened to the changeset and, when it failed, the error kind. The
// per-field old and new values are stored alongside so an edit can be
// audited or reverted by hand. The database lives in paths.state_dir.
package history
