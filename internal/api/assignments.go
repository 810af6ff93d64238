package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easelhq/easel/internal/store"
)

// assignRequest is the JSON body for POST /v1/assignments.
type assignRequest struct {
	RequestID string `json:"request_id"`
	EditorID  string `json:"editor_id"`
	Units     int    `json:"units"`
}

// completionRequest is the JSON body for POST /v1/assignments/{id}/completion.
type completionRequest struct {
	UnitsCompleted int `json:"units_completed"`
}

// assignmentStatusRequest is the JSON body for POST /v1/assignments/{id}/status.
type assignmentStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RequestID == "" || req.EditorID == "" {
		s.writeError(w, http.StatusBadRequest, "request_id and editor_id are required")
		return
	}

	a, err := s.engine.Assign(r.Context(), req.RequestID, req.EditorID, req.Units)
	if err != nil {
		s.writeDomainError(w, err, "failed to assign")
		return
	}

	s.writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := s.store.GetAssignment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "assignment not found")
		return
	}
	if err != nil {
		s.logger.Error("get assignment", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get assignment")
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req completionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a, err := s.engine.RecordCompletion(r.Context(), id, req.UnitsCompleted)
	if err != nil {
		s.writeDomainError(w, err, "failed to record completion")
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAssignmentStatusChange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req assignmentStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a, err := s.engine.UpdateAssignmentStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeDomainError(w, err, "failed to update assignment status")
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.engine.RemoveAssignment(r.Context(), id); err != nil {
		s.writeDomainError(w, err, "failed to remove assignment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
