// Package preflight provides readiness checks for the programs, directories
// and remote services maskctl depends on.
//
// "maskctl doctor" runs RunAll and renders every result. "maskctl edit"
// uses the binary checks to decide whether git checkpoints are possible
// before it opens a session.
package preflight
