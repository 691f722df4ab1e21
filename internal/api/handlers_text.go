package api

import (
	"net/http"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/engine"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
)

type insertTextRequest struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

func (s *Server) handleInsertText(w http.ResponseWriter, r *http.Request) {
	var req insertTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.InsertText(r.Context(), selector(r), req.Offset, req.Text); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"offset": req.Offset})
}

func (s *Server) handleAppendText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	at, err := s.engine.AppendText(r.Context(), selector(r), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"offset": at})
}

func (s *Server) handleDeleteRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Range docmodel.Range `json:"range"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.DeleteRange(r.Context(), selector(r), req.Range); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]docmodel.Range{"range": req.Range})
}

type formatTextRequest struct {
	engine.TextTarget
	Style mutation.TextStyleOptions `json:"style"`
}

func (s *Server) handleFormatText(w http.ResponseWriter, r *http.Request) {
	var req formatTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rng, err := s.engine.FormatText(r.Context(), selector(r), req.TextTarget, req.Style)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]docmodel.Range{"range": rng})
}

type formatParagraphRequest struct {
	engine.ParagraphTarget
	Style mutation.ParagraphStyleOptions `json:"style"`
}

func (s *Server) handleFormatParagraph(w http.ResponseWriter, r *http.Request) {
	var req formatParagraphRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rng, err := s.engine.FormatParagraph(r.Context(), selector(r), req.ParagraphTarget, req.Style)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]docmodel.Range{"range": rng})
}

type insertImageRequest struct {
	Offset int     `json:"offset"`
	URI    string  `json:"uri"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func (s *Server) handleInsertImage(w http.ResponseWriter, r *http.Request) {
	var req insertImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := s.engine.InsertImage(r.Context(), selector(r), req.Offset, req.URI, req.Width, req.Height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"object_id": id, "offset": req.Offset})
}

func (s *Server) handleInsertPageBreak(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.InsertPageBreak(r.Context(), selector(r), req.Offset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type commentRequest struct {
	engine.TextTarget
	Body string `json:"body"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.engine.AddComment(r.Context(), selector(r), req.TextTarget, req.Body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}
