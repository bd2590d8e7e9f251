package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/yndnr/notechain-go/internal/core/domain"
)

// maxBodyBytes bounds request bodies well above the note size limit so the
// service, not the decoder, reports oversize notes.
const maxBodyBytes = 64 << 10

// handleCreateNote handles POST /v1/notes.
func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeNoteRequest(w, r)
	if !ok {
		return
	}

	id, err := h.notes.Create(r.Context(), CallerFromContext(r.Context()), req.Title, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, CreateNoteResponse{ID: id})
}

// handleListNotes handles GET /v1/notes. Only the caller's notes are listed.
func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.notes.List(r.Context(), CallerFromContext(r.Context()))
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })

	items := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, noteToResponse(n))
	}

	h.writeJSON(w, r, http.StatusOK, ListNotesResponse{
		Items: items,
		Total: len(items),
	})
}

// handleGetNote handles GET /v1/notes/{id}. Fetch is ownership-agnostic.
func (h *Handler) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseNoteID(w, r)
	if !ok {
		return
	}

	note, found := h.notes.Fetch(r.Context(), id)
	if !found {
		h.handleServiceError(w, r, domain.ErrNoteNotFound)
		return
	}

	h.writeJSON(w, r, http.StatusOK, noteToResponse(note))
}

// handleUpdateNote handles PUT /v1/notes/{id}.
func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseNoteID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeNoteRequest(w, r)
	if !ok {
		return
	}

	if err := h.notes.Update(r.Context(), id, CallerFromContext(r.Context()), req.Title, req.Content); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]uint64{"id": id})
}

// handleDeleteNote handles DELETE /v1/notes/{id}.
func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseNoteID(w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(r.Context(), id, CallerFromContext(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]uint64{"id": id})
}

func (h *Handler) parseNoteID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid note id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeNoteRequest(w http.ResponseWriter, r *http.Request) (NoteRequest, bool) {
	var req NoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return req, false
	}
	return req, true
}
