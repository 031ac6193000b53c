// Package services defines shared utilities consumed by the edit workflow and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers and step names for
//     logging correlation.
//   - Structured error markers plus the Wrap helper that classify failures as
//     remote call, process, correlation, or configuration errors.
//   - ProcessError, the common shape for non-zero exits of external tools
//     (editor, git) so callers can inspect the exit code and stderr.
//
// Use these helpers when wiring new integrations so error classification and
// observability stay uniform across the tool.
package services
