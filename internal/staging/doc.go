// Package staging runs one edit session in a scratch directory.
//
// The Coordinator writes the serialized records into a fresh directory under
// the staging base, optionally backs it with a git clone so every session is
// checkpointed before and after editing, runs the editor, reads the result
// back and removes the directory again. Only one session may use a staging
// base at a time; the base holds a lock file for that.
//
// CleanStale removes session directories left behind when a process was
// killed before its deferred cleanup ran.
package staging
