package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleOperationStatus(w http.ResponseWriter, r *http.Request) {
	op := s.engine.Coordinator().Get(chi.URLParam(r, "opID"))
	if op == nil {
		jsonError(w, "operation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, op.Status())
}

func (s *Server) handleDocsStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "call stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tracked_operations": s.engine.Coordinator().Tracked(),
		"stats":              s.stats.Snapshot(),
	})
}
