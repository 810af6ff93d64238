package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easelhq/easel/internal/model"
)

// resolveAlertRequest is the JSON body for POST /v1/alerts/{id}/resolve.
type resolveAlertRequest struct {
	ResolverID string `json:"resolver_id"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	editorID := r.URL.Query().Get("editor_id")

	alerts, err := s.engine.ListUnresolvedAlerts(r.Context(), editorID)
	if err != nil {
		s.logger.Error("list alerts", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []model.WorkloadAlert{}
	}

	s.writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resolveAlertRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.engine.ResolveAlert(r.Context(), id, req.ResolverID); err != nil {
		s.writeDomainError(w, err, "failed to resolve alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
