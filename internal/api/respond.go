package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/engine"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds JSON request bodies. Uploads have their own limit.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind docerr.Kind) int {
	switch kind {
	case docerr.KindNotFound:
		return http.StatusNotFound
	case docerr.KindOutOfBounds:
		return http.StatusUnprocessableEntity
	case docerr.KindInvalidRequest:
		return http.StatusBadRequest
	case docerr.KindPermissionDenied:
		return http.StatusForbidden
	case docerr.KindTransient:
		return http.StatusServiceUnavailable
	case docerr.KindUnimplemented:
		return http.StatusNotImplemented
	case docerr.KindStale:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports an engine error with its kind and, for failed text
// lookups, the closest text found.
func writeError(w http.ResponseWriter, err error) {
	kind := docerr.KindOf(err)
	body := map[string]string{
		"error": err.Error(),
		"kind":  kind.String(),
	}
	var se *engine.SuggestError
	if errors.As(err, &se) {
		body["suggestion"] = se.Suggestion
	}
	writeJSON(w, statusFor(kind), body)
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// selector reads the target document from the path and the optional tab
// from the query string.
func selector(r *http.Request) docmodel.Selector {
	return docmodel.Selector{
		DocumentID: chi.URLParam(r, "docID"),
		TabID:      strings.TrimSpace(r.URL.Query().Get("tab")),
	}
}
