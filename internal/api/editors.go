package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/easelhq/easel/internal/model"
	"github.com/easelhq/easel/internal/store"
)

// createEditorRequest is the JSON body for POST /v1/editors.
type createEditorRequest struct {
	Name string `json:"name"`
}

// setCapacityRequest is the JSON body for PUT /v1/editors/{id}/capacity.
type setCapacityRequest struct {
	MaxConcurrentUnits int  `json:"max_concurrent_units"`
	MaxHoursPerWeek    *int `json:"max_hours_per_week"`
}

// setAvailabilityRequest is the JSON body for PUT /v1/editors/{id}/availability.
type setAvailabilityRequest struct {
	IsAvailable      bool       `json:"is_available"`
	UnavailableUntil *time.Time `json:"unavailable_until"`
}

// editorLoadResponse is the JSON response for GET /v1/editors/{id}/load.
type editorLoadResponse struct {
	EditorID       string    `json:"editor_id"`
	LoadPercentage float64   `json:"load_percentage"`
	Status         string    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
}

func (s *Server) handleCreateEditor(w http.ResponseWriter, r *http.Request) {
	var req createEditorRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	editor := &model.Editor{
		ID:        model.NewID(),
		Name:      req.Name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateEditor(r.Context(), editor); err != nil {
		s.logger.Error("create editor", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create editor")
		return
	}

	s.writeJSON(w, http.StatusCreated, editor)
}

func (s *Server) handleListEditors(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	editors, err := s.store.ListEditors(r.Context(), activeOnly)
	if err != nil {
		s.logger.Error("list editors", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list editors")
		return
	}
	if editors == nil {
		editors = []model.Editor{}
	}

	s.writeJSON(w, http.StatusOK, editors)
}

func (s *Server) handleGetEditor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	editor, err := s.store.GetEditor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "editor not found")
		return
	}
	if err != nil {
		s.logger.Error("get editor", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get editor")
		return
	}

	s.writeJSON(w, http.StatusOK, editor)
}

func (s *Server) handleDeactivateEditor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeactivateEditor(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "editor not found")
			return
		}
		s.logger.Error("deactivate editor", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to deactivate editor")
		return
	}

	// Deactivated editors stop receiving capacity updates.
	s.engine.Broker().Close(id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCapacity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setCapacityRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.engine.SetCapacitySettings(r.Context(), id, req.MaxConcurrentUnits, req.MaxHoursPerWeek)
	if err != nil {
		s.writeDomainError(w, err, "failed to update capacity settings")
		return
	}

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setAvailabilityRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.engine.SetAvailability(r.Context(), id, req.IsAvailable, req.UnavailableUntil)
	if err != nil {
		s.writeDomainError(w, err, "failed to set availability")
		return
	}

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetEditorLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := s.engine.GetEditorLoad(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "failed to get editor load")
		return
	}

	s.writeJSON(w, http.StatusOK, editorLoadResponse{
		EditorID:       c.EditorID,
		LoadPercentage: c.LoadPercentage,
		Status:         c.Status,
		LastUpdated:    c.LastUpdated,
	})
}
