package api

import (
	"net/http"

	"github.com/easelhq/easel/internal/store"
	"github.com/easelhq/easel/internal/workload"
)

// summaryResponse is the JSON response for GET /v1/workload/summary.
type summaryResponse struct {
	Editors []store.EditorWorkloadRow `json:"editors"`
}

// recalculateResponse is the JSON response for POST /v1/admin/recalculate.
type recalculateResponse struct {
	Deltas []workload.RecalcDelta `json:"deltas"`
}

func (s *Server) handleWorkloadSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.GetWorkloadSummary(r.Context())
	if err != nil {
		s.logger.Error("workload summary", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get workload summary")
		return
	}
	if summary == nil {
		summary = []store.EditorWorkloadRow{}
	}

	s.writeJSON(w, http.StatusOK, summaryResponse{Editors: summary})
}

func (s *Server) handleRecalculateAll(w http.ResponseWriter, r *http.Request) {
	deltas, err := s.engine.RecalculateAll(r.Context())
	if err != nil {
		s.logger.Error("recalculate all", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to recalculate")
		return
	}
	if deltas == nil {
		deltas = []workload.RecalcDelta{}
	}

	s.writeJSON(w, http.StatusOK, recalculateResponse{Deltas: deltas})
}
