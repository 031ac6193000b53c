// Package logging builds the slog loggers used by maskctl.
//
// Console output goes to stderr so it never mixes with command output on
// stdout. When a log file is configured, every record is also written there
// as JSON. Context helpers tag records with the edit session id and the
// current step.
package logging
