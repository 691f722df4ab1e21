package api

import (
	"fmt"
	"net/http"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/lists"
)

type convertListsRequest struct {
	Range *docmodel.Range `json:"range,omitempty"`
}

func (s *Server) handleConvertLists(w http.ResponseWriter, r *http.Request) {
	var req convertListsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := s.engine.ConvertMarkedParagraphsToLists(r.Context(), selector(r), req.Range)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"converted": n})
}

type bulletRequest struct {
	Range docmodel.Range `json:"range"`
	Style string         `json:"style,omitempty"`
}

func (s *Server) handleApplyBullets(w http.ResponseWriter, r *http.Request) {
	var req bulletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	style, ok := lists.ParseStyle(req.Style)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown list style %q", req.Style), http.StatusBadRequest)
		return
	}
	if err := s.engine.ApplyBulletList(r.Context(), selector(r), req.Range, style); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"range": req.Range, "style": style.String()})
}

func (s *Server) handleRemoveBullets(w http.ResponseWriter, r *http.Request) {
	var req bulletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.RemoveBulletList(r.Context(), selector(r), req.Range); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"range": req.Range})
}
