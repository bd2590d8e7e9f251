package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/internal/core/service"
	"github.com/yndnr/notechain-go/internal/telemetry/logger"
)

// ReadinessChecker reports whether the node finished its post-restart
// hook. *storage.Engine satisfies it.
type ReadinessChecker interface {
	Ready() bool
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	notes *service.NoteService
	ready ReadinessChecker
	mux   *http.ServeMux
}

// New creates a new Handler. A nil ready reports the node as always ready.
// Handlers log through the request logger installed by the middleware.
func New(notes *service.NoteService, ready ReadinessChecker) *Handler {
	h := &Handler{
		notes: notes,
		ready: ready,
		mux:   http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Note endpoints
	h.mux.HandleFunc("GET /v1/notes", h.handleListNotes)
	h.mux.HandleFunc("POST /v1/notes", h.handleCreateNote)
	h.mux.HandleFunc("GET /v1/notes/{id}", h.handleGetNote)
	h.mux.HandleFunc("PUT /v1/notes/{id}", h.handleUpdateNote)
	h.mux.HandleFunc("DELETE /v1/notes/{id}", h.handleDeleteNote)
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying the resolved caller identity.
func WithCaller(ctx context.Context, owner domain.Owner) context.Context {
	return context.WithValue(ctx, callerKey{}, owner)
}

// CallerFromContext returns the caller stored by WithCaller, or the
// anonymous owner when none was stored.
func CallerFromContext(ctx context.Context) domain.Owner {
	if owner, ok := ctx.Value(callerKey{}).(domain.Owner); ok {
		return owner
	}
	return domain.AnonymousOwner
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(w)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string, details any) {
	requestID := getRequestID(w)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// WriteDomainError writes err using the envelope format. Middleware that
// rejects a request before it reaches a handler uses it too.
func WriteDomainError(w http.ResponseWriter, err error) {
	code := domain.GetErrorCode(err)
	if code == "" {
		code = domain.ErrInternalServer.Code
		err = domain.ErrInternalServer
	}
	response := NewErrorResponse(getRequestID(w), code, err.Error(), nil)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(ErrorCodeToHTTPStatus(code))
	json.NewEncoder(w).Encode(response)
}

// getRequestID returns the id the RequestID middleware put on the response.
func getRequestID(w http.ResponseWriter) string {
	return w.Header().Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		h.writeError(w, ErrorCodeToHTTPStatus(code), code, err.Error(), nil)
		return
	}

	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", nil)
}

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4002"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
