// Package main hosts the maskctl CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into edit sessions
// against the Fastmail masked e-mail API, listing and export of aliases,
// history inspection, staging maintenance, and configuration scaffolding.
// Configuration resolution and logger setup live in commandContext so
// subcommands only deal with presentation.
//
// Keep this package lean: add behavior to the internal packages first, then
// surface it here through a command or flag.
package main
