package api

import (
	"net/http"

	"github.com/EastAgile/google-docs-mcp/internal/engine"
)

func (s *Server) handlePopulateTable(w http.ResponseWriter, r *http.Request) {
	var spec engine.TableSpec
	if !decodeJSON(w, r, &spec) {
		return
	}
	res, err := s.engine.PopulateTable(r.Context(), selector(r), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type insertTableRequest struct {
	Offset  int `json:"offset"`
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (s *Server) handleInsertTable(w http.ResponseWriter, r *http.Request) {
	var req insertTableRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.InsertTable(r.Context(), selector(r), req.Offset, req.Rows, req.Columns); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	var edit engine.CellEdit
	if !decodeJSON(w, r, &edit) {
		return
	}
	if err := s.engine.EditCell(r.Context(), selector(r), edit); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"anchor": edit.Anchor, "row": edit.Row, "column": edit.Column})
}
