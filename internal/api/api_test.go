package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/config"
	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel/docbuild"
	"github.com/EastAgile/google-docs-mcp/internal/docsapi"
	"github.com/EastAgile/google-docs-mcp/internal/engine"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline/pipelinetest"
)

const testKey = "test-key"

func newTestServer(docs ...*docmodel.Document) (*Server, *pipelinetest.Remote) {
	remote := pipelinetest.New(docs...)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := pipeline.NewCoordinator(remote, nil, time.Hour, log)
	eng := engine.New(coord, engine.Options{})
	cfg := config.Config{ServiceAPIKey: testKey, MaxUploadBytes: 1 << 20}
	return NewServer(eng, docsapi.NewCallStats(time.Hour), log, cfg), remote
}

func helloDoc() *docmodel.Document {
	b := docbuild.New("doc-1")
	b.Paragraph("Hello world")
	return b.Document()
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuth_Rejected(t *testing.T) {
	s, remote := newTestServer(helloDoc())

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/api/documents/doc-1/text", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without header, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/documents/doc-1/text", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad key, got %d", w.Code)
	}
	if remote.Fetches != 0 {
		t.Errorf("expected no fetches, got %d", remote.Fetches)
	}
}

func TestReadText(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "GET", "/api/documents/doc-1/text", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["text"]; !strings.Contains(got.(string), "Hello world") {
		t.Errorf("unexpected text %q", got)
	}
}

func TestLocateText_OperationIsTracked(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/locate/text", `{"text":"world"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	rng := decode(t, w)["range"].(map[string]any)
	if rng["start"].(float64) != 7 || rng["end"].(float64) != 12 {
		t.Errorf("expected [7,12), got %v", rng)
	}

	id := w.Header().Get(OperationIDHeader)
	if id == "" {
		t.Fatal("expected operation id header")
	}
	w = do(t, s, "GET", "/api/operations/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for operation status, got %d", w.Code)
	}
	st := decode(t, w)
	if st["phase"] != "done" || st["name"] != "locate text" {
		t.Errorf("unexpected status %v", st)
	}
}

func TestLocateText_CallerOperationID(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	req := httptest.NewRequest("POST", "/api/documents/doc-1/locate/text", strings.NewReader(`{"text":"Hello"}`))
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set(OperationIDHeader, "op-42")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Header().Get(OperationIDHeader) != "op-42" {
		t.Errorf("expected echoed id, got %q", w.Header().Get(OperationIDHeader))
	}
	if s.engine.Coordinator().Get("op-42") == nil {
		t.Error("expected operation op-42 to be tracked")
	}
}

func TestLocateText_NotFound(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/locate/text", `{"text":"goodbye"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if kind := decode(t, w)["kind"]; kind != "not_found" {
		t.Errorf("expected not_found kind, got %v", kind)
	}
}

func TestUnknownTab(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "GET", "/api/documents/doc-1/text?tab=t.missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown tab, got %d", w.Code)
	}
}

func TestBadBody(t *testing.T) {
	s, remote := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/locate/text", `{"needle":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown field, got %d", w.Code)
	}
	if remote.Fetches != 0 {
		t.Errorf("expected no fetches, got %d", remote.Fetches)
	}
}

func TestFormatText_NoStyleIsRejected(t *testing.T) {
	s, remote := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/text/format", `{"text":"world","style":{}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(remote.Batches) != 0 {
		t.Errorf("expected no batches, got %d", len(remote.Batches))
	}
}

func TestFormatText_Applies(t *testing.T) {
	s, remote := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/text/format", `{"text":"world","style":{"bold":true}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(remote.Batches) != 1 || len(remote.Batches[0]) != 1 {
		t.Fatalf("expected one batch with one request, got %v", remote.Batches)
	}
	if got := remote.Batches[0][0].Target(); got != (docmodel.Range{Start: 7, End: 12}) {
		t.Errorf("expected [7,12), got %v", got)
	}
}

func TestInsertText_OutOfBounds(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/text/insert", `{"offset":500,"text":"x"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestApplyBullets_UnknownStyle(t *testing.T) {
	s, remote := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/lists/apply", `{"range":{"start":1,"end":12},"style":"roman"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if remote.Fetches != 0 {
		t.Errorf("expected no fetches, got %d", remote.Fetches)
	}
}

func TestAddComment_Unimplemented(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "POST", "/api/documents/doc-1/comments", `{"text":"world","body":"check"}`)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", w.Code)
	}
}

func TestOperationStatus_NotFound(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "GET", "/api/operations/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDocsStats(t *testing.T) {
	s, _ := newTestServer(helloDoc())
	w := do(t, s, "GET", "/api/stats/docs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	stats := decode(t, w)["stats"].(map[string]any)
	for _, k := range []string{"fetch_document", "apply_mutations"} {
		if _, ok := stats[k]; !ok {
			t.Errorf("missing %s stats", k)
		}
	}
}

func upload(t *testing.T, s *Server, filename, content, offset string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if offset != "" {
		mw.WriteField("offset", offset)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/documents/doc-1/import", &buf)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestImport_Markdown(t *testing.T) {
	before := docbuild.New("doc-1")
	before.Paragraph("End")
	after := docbuild.New("doc-1")
	after.Paragraph("Title")
	after.Paragraph("End")
	s, remote := newTestServer(before.Document(), after.Document())

	w := upload(t, s, "notes.md", "# Title\n", "2")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(remote.Batches) != 2 {
		t.Fatalf("expected insert and style batches, got %d", len(remote.Batches))
	}
	if got := remote.Batches[0][0].InsertText; got.Text != "Title\n" || got.Location.Index != 1 {
		t.Errorf("unexpected insert %+v", got)
	}
	res := decode(t, w)
	if res["title"] != "notes" {
		t.Errorf("expected title notes, got %v", res["title"])
	}
}

func TestImport_Rejections(t *testing.T) {
	s, remote := newTestServer(helloDoc())
	if w := upload(t, s, "image.png", "x", "1"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", w.Code)
	}
	if w := upload(t, s, "notes.txt", "hello", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without offset, got %d", w.Code)
	}
	if w := upload(t, s, "notes.txt", strings.Repeat("a", 2<<20), "1"); w.Code != http.StatusRequestEntityTooLarge && w.Code != http.StatusBadRequest {
		t.Errorf("expected oversize rejection, got %d", w.Code)
	}
	if remote.Fetches != 0 {
		t.Errorf("expected no fetches, got %d", remote.Fetches)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"a/b/report.md":    "report.md",
		"":                 "unnamed",
		"..":               "_",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[docerr.Kind]int{
		docerr.KindNotFound:         http.StatusNotFound,
		docerr.KindOutOfBounds:      http.StatusUnprocessableEntity,
		docerr.KindStale:            http.StatusConflict,
		docerr.KindTransient:        http.StatusServiceUnavailable,
		docerr.KindUnknown:          http.StatusInternalServerError,
		docerr.KindPermissionDenied: http.StatusForbidden,
	}
	for kind, want := range cases {
		if got := statusFor(kind); got != want {
			t.Errorf("%v: expected %d, got %d", kind, want, got)
		}
	}
}
