// Package logs reads the JSON log file written by maskctl.
//
// Tail returns the last lines of the file, or the lines appended after an
// offset, and can poll for new lines in follow mode. Entry decodes one JSON
// record so "maskctl logs" can filter by session and print it in the same
// shape as the console handler.
package logs
