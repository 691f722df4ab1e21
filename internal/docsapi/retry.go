package docsapi

import (
	"math/rand"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
)

// MaxRetries is the default number of fetch retries.
const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	return docerr.KindOf(err) == docerr.KindTransient
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}
