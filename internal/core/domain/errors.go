// Package domain defines the core domain models for NoteChain.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form NC-<AREA>-<NNNN>; the last four digits follow HTTP status
// semantics so transports can map them without a lookup table.
type DomainError struct {
	Code    string // Error code (e.g., "NC-NOTE-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface. The cause, when present, is
// appended so a logged error carries the underlying reason.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two domain errors match when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Note Errors (NOTE)
// ============================================================================

var (
	// ErrNoteValidation indicates a required note field is empty.
	ErrNoteValidation = NewDomainError("NC-NOTE-4001", "note validation failed")

	// ErrNoteTooLarge indicates title plus content exceed MaxNoteSizeBytes.
	ErrNoteTooLarge = NewDomainError("NC-NOTE-4002", "note exceeds size limit")

	// ErrNotOwner indicates the caller does not own the note.
	ErrNotOwner = NewDomainError("NC-NOTE-4030", "caller does not own this note")

	// ErrNoteNotFound indicates no note exists with the given id.
	ErrNoteNotFound = NewDomainError("NC-NOTE-4040", "note not found")
)

// ============================================================================
// Snapshot Errors (SNAP)
//
// These never reach a caller. The restart hooks absorb them and log.
// ============================================================================

var (
	// ErrSnapshotEncode indicates the table state could not be serialized.
	ErrSnapshotEncode = NewDomainError("NC-SNAP-5001", "snapshot encode failed")

	// ErrSnapshotDecode indicates no known snapshot format matched the stored bytes.
	ErrSnapshotDecode = NewDomainError("NC-SNAP-5002", "snapshot decode failed")
)

// ============================================================================
// Stable Storage Errors (STAB)
// ============================================================================

var (
	// ErrStableWrite indicates the durable medium rejected a write.
	ErrStableWrite = NewDomainError("NC-STAB-5001", "stable storage write failed")

	// ErrStableRead indicates the durable medium could not be read.
	ErrStableRead = NewDomainError("NC-STAB-5002", "stable storage read failed")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrCallerRequired indicates the request carries no caller identity
	// and anonymous callers are not allowed.
	ErrCallerRequired = NewDomainError("NC-AUTH-4010", "caller identity required")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("NC-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the service is not ready yet.
	ErrServiceUnavailable = NewDomainError("NC-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("NC-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("NC-SYS-4290", "too many requests")
)
