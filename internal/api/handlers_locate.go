package api

import (
	"net/http"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

func (s *Server) handleReadText(w http.ResponseWriter, r *http.Request) {
	text, err := s.engine.ReadText(r.Context(), selector(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

type locateTextRequest struct {
	Text       string `json:"text"`
	Occurrence int    `json:"occurrence"`
}

func (s *Server) handleLocateText(w http.ResponseWriter, r *http.Request) {
	var req locateTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Occurrence == 0 {
		req.Occurrence = 1
	}
	rng, err := s.engine.LocateText(r.Context(), selector(r), req.Text, req.Occurrence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]docmodel.Range{"range": rng})
}

type offsetRequest struct {
	Offset int `json:"offset"`
}

func (s *Server) handleLocateParagraph(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rng, err := s.engine.LocateParagraph(r.Context(), selector(r), req.Offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]docmodel.Range{"range": rng})
}

type locateCellRequest struct {
	Anchor int `json:"anchor"`
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (s *Server) handleLocateCell(w http.ResponseWriter, r *http.Request) {
	var req locateCellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cell, err := s.engine.LocateCell(r.Context(), selector(r), req.Anchor, req.Row, req.Column)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cell)
}

func (s *Server) handleFindParagraphs(w http.ResponseWriter, r *http.Request) {
	ranges, err := s.engine.FindParagraphsByStyle(r.Context(), selector(r), r.URL.Query().Get("style"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranges": ranges})
}
