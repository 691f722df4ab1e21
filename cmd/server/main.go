package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/api"
	"github.com/EastAgile/google-docs-mcp/internal/config"
	"github.com/EastAgile/google-docs-mcp/internal/docsapi"
	"github.com/EastAgile/google-docs-mcp/internal/engine"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the document service client.
	stats := docsapi.NewCallStats(cfg.StatsWindow)
	docs := docsapi.NewClient(docsapi.Config{
		BaseURL:    cfg.DocsAPIURL,
		Token:      cfg.DocsAccessToken,
		Timeout:    cfg.DocsHTTPTimeout,
		MaxRetries: cfg.FetchMaxRetries,
	}, stats, log)

	// Initialize operation coordination.
	sink := pipeline.SlogSink{Log: log}
	coord := pipeline.NewCoordinator(docs, sink, cfg.OperationTTL, log)
	coord.Start(ctx)

	eng := engine.New(coord, engine.Options{
		AnchorTolerance: cfg.TableAnchorTolerance,
		Sink:            sink,
	})

	// Initialize HTTP server.
	srv := api.NewServer(eng, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		coord.Stop()
		docs.Close()
	}()

	log.Info("starting document engine", "port", cfg.Port, "docs_api", cfg.DocsAPIURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
