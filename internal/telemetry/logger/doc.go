// Package logger provides structured logging for NoteChain.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, handler construction, dynamic level
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive data redaction
//
// Note bodies never reach the log verbatim. Attributes named "content"
// are replaced by their byte length, and attributes whose key looks like a
// credential are masked.
package logger
