// Package logging assembles the structured slog loggers shared by the daemon,
// the IPC layer and the CLI.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standard field names used in log lines (component, window_id, request_id,
// command), and helpers that enforce the event_type/error_hint shape on
// warnings and errors. NewNop returns a discarding logger for tests and for
// wiring code that must not fail.
package logging
