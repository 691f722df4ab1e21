package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Remote document service
	DocsAPIURL      string
	DocsAccessToken string
	DocsHTTPTimeout time.Duration
	FetchMaxRetries int

	// Auth
	ServiceAPIKey string

	// Resolution
	TableAnchorTolerance int

	// Upload limits
	MaxUploadBytes int64

	// Operation state
	OperationTTL time.Duration

	// Call latency window
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocsAPIURL:      envOr("DOCS_API_URL", "https://docs.googleapis.com"),
		DocsAccessToken: os.Getenv("DOCS_ACCESS_TOKEN"),
		DocsHTTPTimeout: envDuration("DOCS_HTTP_TIMEOUT", 30*time.Second),
		FetchMaxRetries: envInt("FETCH_MAX_RETRIES", 3),

		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),

		TableAnchorTolerance: envInt("TABLE_ANCHOR_TOLERANCE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		OperationTTL: envDuration("OPERATION_TTL", 1*time.Hour),
		StatsWindow:  envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.DocsHTTPTimeout <= 0 {
		cfg.DocsHTTPTimeout = 30 * time.Second
	}
	if cfg.FetchMaxRetries < 0 {
		cfg.FetchMaxRetries = 0
	}
	if cfg.TableAnchorTolerance < 0 {
		cfg.TableAnchorTolerance = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.OperationTTL <= 0 {
		cfg.OperationTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocsAccessToken == "" {
		return fmt.Errorf("DOCS_ACCESS_TOKEN is required")
	}
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("SERVICE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
