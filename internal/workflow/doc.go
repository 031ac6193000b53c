// Package workflow runs a complete masked e-mail edit session: fetch the
// aliases, stage them for editing, parse the result into a changeset, ask
// for confirmation and submit it, recording each step in the session
// history.
//
// The Runner depends on narrow interfaces for the remote store, the staging
// coordinator and the history so the whole flow can be exercised in tests
// with in-memory fakes.
package workflow
