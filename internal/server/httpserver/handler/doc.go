// Package handler provides HTTP request handlers for NoteChain.
//
// This package contains handlers for all HTTP endpoints:
//
//   - note.go: note CRUD operations under /v1/notes
//   - health.go: health and readiness checks
//
// Handlers parse the request, call the note service and write the
// standard response envelope. Domain error codes map to HTTP status by
// their numeric suffix.
package handler
