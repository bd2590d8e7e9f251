package handler

import (
	"time"

	"github.com/yndnr/notechain-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// NoteRequest is the request body for POST /v1/notes and PUT /v1/notes/{id}.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNoteResponse is the response body for POST /v1/notes.
type CreateNoteResponse struct {
	ID uint64 `json:"id"`
}

// NoteResponse represents a note in API responses.
type NoteResponse struct {
	ID        uint64 `json:"id"`
	Owner     string `json:"owner"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt uint64 `json:"created_at"`
}

// ListNotesResponse is the response body for GET /v1/notes.
type ListNotesResponse struct {
	Items []NoteResponse `json:"items"`
	Total int            `json:"total"`
}

func noteToResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Owner:     n.Owner.String(),
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
}
