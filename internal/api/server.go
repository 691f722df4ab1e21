package api

import (
	"log/slog"
	"net/http"

	"github.com/EastAgile/google-docs-mcp/internal/config"
	"github.com/EastAgile/google-docs-mcp/internal/docsapi"
	"github.com/EastAgile/google-docs-mcp/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP tool surface over the document engine.
type Server struct {
	router chi.Router
	engine *engine.Engine
	stats  *docsapi.CallStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil when
// the remote does not record call latencies.
func NewServer(eng *engine.Engine, stats *docsapi.CallStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		engine: eng,
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))

		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Use(OperationID)

			r.Get("/text", s.handleReadText)
			r.Get("/paragraphs", s.handleFindParagraphs)

			r.Post("/locate/text", s.handleLocateText)
			r.Post("/locate/paragraph", s.handleLocateParagraph)
			r.Post("/locate/cell", s.handleLocateCell)

			r.Post("/lists/convert", s.handleConvertLists)
			r.Post("/lists/apply", s.handleApplyBullets)
			r.Post("/lists/remove", s.handleRemoveBullets)

			r.Post("/tables", s.handlePopulateTable)
			r.Post("/tables/empty", s.handleInsertTable)
			r.Post("/cells", s.handleEditCell)

			r.Post("/text/insert", s.handleInsertText)
			r.Post("/text/append", s.handleAppendText)
			r.Post("/text/delete", s.handleDeleteRange)
			r.Post("/text/format", s.handleFormatText)
			r.Post("/paragraphs/format", s.handleFormatParagraph)

			r.Post("/images", s.handleInsertImage)
			r.Post("/page-breaks", s.handleInsertPageBreak)
			r.Post("/import", s.handleImport)
			r.Post("/comments", s.handleAddComment)
		})

		r.Get("/api/operations/{opID}", s.handleOperationStatus)
		r.Get("/api/stats/docs", s.handleDocsStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
