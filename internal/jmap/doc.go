// Package jmap is a minimal JMAP client for the Fastmail masked e-mail API.
//
// Client fetches the session resource once, then posts method calls to its
// apiUrl with bearer authentication. MaskedEmails wraps MaskedEmail/get and
// MaskedEmail/set for the primary masked e-mail account. Every failure is
// tagged with services.ErrRemoteCall; nothing is retried.
package jmap
