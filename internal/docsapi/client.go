// Package docsapi talks to the remote document service over its REST API.
package docsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
)

// Config holds connection settings for the document service.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

// Client fetches document trees and applies mutation batches.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	stats      *CallStats
	log        *slog.Logger

	backoff func(attempt int) time.Duration
}

func NewClient(cfg Config, stats *CallStats, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if stats == nil {
		stats = NewCallStats(time.Hour)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		stats:      stats,
		log:        log,
		backoff:    Backoff,
	}
}

// Stats returns the call latency recorder.
func (c *Client) Stats() *CallStats { return c.stats }

type batchUpdateRequest struct {
	Requests []*mutation.Request `json:"requests"`
}

type batchUpdateResponse struct {
	DocumentID string           `json:"documentId"`
	Replies    []mutation.Reply `json:"replies"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// FetchDocument reads the full tree, including tab content. Transient
// failures are retried with backoff; reads are idempotent.
func (c *Client) FetchDocument(ctx context.Context, sel docmodel.Selector, fields string) (*docmodel.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			c.log.Warn("retrying document fetch", "doc_id", sel.DocumentID, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		doc, err := c.fetchOnce(ctx, sel, fields)
		if err == nil {
			return doc, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, sel docmodel.Selector, fields string) (_ *docmodel.Document, err error) {
	q := url.Values{}
	q.Set("includeTabsContent", "true")
	if fields != "" {
		q.Set("fields", fields)
	}
	u := c.baseURL + "/v1/documents/" + url.PathEscape(sel.DocumentID) + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(httpReq)

	start := time.Now()
	defer func() { c.stats.Record(CallFetch, time.Since(start), err) }()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err, sel.DocumentID, "fetch document")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, sel.DocumentID, "fetch document")
	}

	var doc docmodel.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// ApplyMutations submits one ordered batch. It is never retried: a batch
// that may have been applied cannot be safely replayed.
func (c *Client) ApplyMutations(ctx context.Context, sel docmodel.Selector, reqs []*mutation.Request) (_ *mutation.Result, err error) {
	body, err := json.Marshal(batchUpdateRequest{Requests: reqs})
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	u := c.baseURL + "/v1/documents/" + url.PathEscape(sel.DocumentID) + ":batchUpdate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	start := time.Now()
	defer func() { c.stats.Record(CallApply, time.Since(start), err) }()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err, sel.DocumentID, "apply mutations")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, sel.DocumentID, "apply mutations")
	}

	var out batchUpdateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	c.log.Debug("batch applied", "doc_id", sel.DocumentID, "requests", len(reqs), "replies", len(out.Replies))
	return &mutation.Result{DocumentID: out.DocumentID, Replies: out.Replies}, nil
}

func (c *Client) authorize(r *http.Request) {
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// StatusError is a non-success response from the document service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

func statusError(resp *http.Response, docID, op string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var ae apiError
	if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
		msg = ae.Error.Message
	}
	return &docerr.Error{
		Kind:       kindForStatus(resp.StatusCode),
		DocumentID: docID,
		Op:         op,
		Err:        &StatusError{StatusCode: resp.StatusCode, Message: msg},
	}
}

func kindForStatus(code int) docerr.Kind {
	switch {
	case code == http.StatusNotFound:
		return docerr.KindNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return docerr.KindPermissionDenied
	case code == http.StatusBadRequest:
		return docerr.KindInvalidRequest
	case code == http.StatusNotImplemented:
		return docerr.KindUnimplemented
	case code == http.StatusTooManyRequests || code >= 500:
		return docerr.KindTransient
	}
	return docerr.KindUnknown
}

func transportError(ctx context.Context, err error, docID, op string) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", op, docID, err)
	}
	return &docerr.Error{Kind: docerr.KindTransient, DocumentID: docID, Op: op, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
