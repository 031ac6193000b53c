// Package vcs drives the git binary for staging checkpoints.
//
// Git runs each subcommand in the scratch directory and turns a non-zero
// exit into a *services.ProcessError carrying the captured stderr. The
// Executor seam lets tests script git's responses without spawning it.
package vcs
