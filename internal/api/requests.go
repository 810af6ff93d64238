package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/easelhq/easel/internal/model"
	"github.com/easelhq/easel/internal/store"
	"github.com/easelhq/easel/internal/workload"
)

// upsertRequestBody is the JSON body for POST /v1/requests. Requests are
// owned by an external collaborator; this endpoint ingests their facts.
type upsertRequestBody struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	TotalUnitsRequested int        `json:"total_units_requested"`
	Status              string     `json:"status"`
	DueDate             *time.Time `json:"due_date"`
}

// requestStatusBody is the JSON body for PATCH /v1/requests/{id}/status.
type requestStatusBody struct {
	Status string `json:"status"`
}

// remainingUnitsResponse is the JSON response for GET /v1/requests/{id}/remaining.
type remainingUnitsResponse struct {
	RequestID      string                   `json:"request_id"`
	TotalRequested int                      `json:"total_units_requested"`
	AssignedUnits  int                      `json:"assigned_units"`
	RemainingUnits int                      `json:"remaining_units"`
	Bounded        bool                     `json:"bounded"`
	Assignments    []assignmentBreakdownRow `json:"assignments"`
}

// assignmentBreakdownRow is one editor's share in the remaining-units view.
// Declined assignments appear with their status so a UI can show why their
// units returned to the pool.
type assignmentBreakdownRow struct {
	EditorID      string `json:"editor_id"`
	UnitsAssigned int    `json:"units_assigned"`
	Status        string `json:"status"`
}

var knownRequestStatuses = map[string]bool{
	model.RequestOpen:       true,
	model.RequestInProgress: true,
	model.RequestDelivered:  true,
	model.RequestCompleted:  true,
	model.RequestCancelled:  true,
}

func (s *Server) handleUpsertRequest(w http.ResponseWriter, r *http.Request) {
	var req upsertRequestBody
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.TotalUnitsRequested < 0 {
		s.writeError(w, http.StatusBadRequest, "total_units_requested must not be negative")
		return
	}
	if req.Status == "" {
		req.Status = model.RequestOpen
	}
	if !knownRequestStatuses[req.Status] {
		s.writeError(w, http.StatusBadRequest, "unknown request status")
		return
	}

	rec := &model.Request{
		ID:                  req.ID,
		Title:               req.Title,
		TotalUnitsRequested: req.TotalUnitsRequested,
		Status:              req.Status,
		Active:              !model.ClosedRequest(req.Status),
		DueDate:             req.DueDate,
		CreatedAt:           time.Now().UTC(),
	}
	if rec.ID == "" {
		rec.ID = model.NewID()
	}

	if err := s.store.UpsertRequest(r.Context(), rec); err != nil {
		s.logger.Error("upsert request", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to upsert request")
		return
	}

	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetRequest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		s.logger.Error("get request", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get request")
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRequestStatusChange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req requestStatusBody
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !knownRequestStatuses[req.Status] {
		s.writeError(w, http.StatusBadRequest, "unknown request status")
		return
	}

	if err := s.engine.HandleRequestStatusChanged(r.Context(), id, req.Status); err != nil {
		s.writeDomainError(w, err, "failed to change request status")
		return
	}

	rec, err := s.store.GetRequest(r.Context(), id)
	if err != nil {
		s.logger.Error("get updated request", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get updated request")
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetRemainingUnits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetRequest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		s.logger.Error("get request for remaining", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get request")
		return
	}

	assignments, err := s.store.ListAssignmentsByRequest(r.Context(), id)
	if err != nil {
		s.logger.Error("list assignments for remaining", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}

	assigned := 0
	breakdown := make([]assignmentBreakdownRow, 0, len(assignments))
	for _, a := range assignments {
		if a.Status != model.AssignmentDeclined {
			assigned += a.UnitsAssigned
		}
		breakdown = append(breakdown, assignmentBreakdownRow{
			EditorID:      a.EditorID,
			UnitsAssigned: a.UnitsAssigned,
			Status:        a.Status,
		})
	}

	remaining, bounded := workload.RemainingUnits(rec.TotalUnitsRequested, assigned)
	s.writeJSON(w, http.StatusOK, remainingUnitsResponse{
		RequestID:      id,
		TotalRequested: rec.TotalUnitsRequested,
		AssignedUnits:  assigned,
		RemainingUnits: remaining,
		Bounded:        bounded,
		Assignments:    breakdown,
	})
}

func (s *Server) handleUploadRecorded(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.store.GetRequest(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "request not found")
			return
		}
		s.logger.Error("get request for upload", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get request")
		return
	}

	if err := s.engine.HandleUploadRecorded(r.Context(), id); err != nil {
		s.writeDomainError(w, err, "failed to process upload event")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
