package docsapi

import (
	"math"
	"slices"
	"sort"
	"sync"
	"time"
)

// Call names a remote call whose latency is tracked.
type Call string

const (
	CallFetch Call = "fetch_document"
	CallApply Call = "apply_mutations"
)

// CallSummary aggregates the calls of one kind inside the window.
type CallSummary struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  int64   `json:"p50_ms"`
	P95Ms  int64   `json:"p95_ms"`
	P99Ms  int64   `json:"p99_ms"`
}

type callSample struct {
	at     time.Time
	ms     int64
	failed bool
}

// CallStats records remote call outcomes over a sliding time window.
// Samples of each call are kept in arrival order.
type CallStats struct {
	mu      sync.Mutex
	window  time.Duration
	samples map[Call][]callSample
	now     func() time.Time
}

func NewCallStats(window time.Duration) *CallStats {
	if window <= 0 {
		window = time.Hour
	}
	return &CallStats{
		window: window,
		samples: map[Call][]callSample{
			CallFetch: nil,
			CallApply: nil,
		},
		now: time.Now,
	}
}

// Record adds one call. A non-nil err counts the call as failed.
func (c *CallStats) Record(call Call, d time.Duration, err error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.expireLocked(call, now)
	c.samples[call] = append(kept, callSample{at: now, ms: max(d.Milliseconds(), 0), failed: err != nil})
}

// Summary returns the aggregate for one call kind.
func (c *CallStats) Summary(call Call) CallSummary {
	now := c.now()
	c.mu.Lock()
	kept := c.expireLocked(call, now)
	c.samples[call] = kept
	ms := make([]int64, len(kept))
	var sum int64
	var failed int
	for i, s := range kept {
		ms[i] = s.ms
		sum += s.ms
		if s.failed {
			failed++
		}
	}
	c.mu.Unlock()

	if len(ms) == 0 {
		return CallSummary{}
	}
	slices.Sort(ms)
	return CallSummary{
		Count:  len(ms),
		Errors: failed,
		MinMs:  ms[0],
		MaxMs:  ms[len(ms)-1],
		AvgMs:  float64(sum) / float64(len(ms)),
		P50Ms:  nearestRank(ms, 50),
		P95Ms:  nearestRank(ms, 95),
		P99Ms:  nearestRank(ms, 99),
	}
}

// Snapshot returns a summary for every tracked call kind.
func (c *CallStats) Snapshot() map[Call]CallSummary {
	c.mu.Lock()
	calls := make([]Call, 0, len(c.samples))
	for call := range c.samples {
		calls = append(calls, call)
	}
	c.mu.Unlock()

	out := make(map[Call]CallSummary, len(calls))
	for _, call := range calls {
		out[call] = c.Summary(call)
	}
	return out
}

// expireLocked drops samples older than the window. Samples are in time
// order, so the survivors are a suffix.
func (c *CallStats) expireLocked(call Call, now time.Time) []callSample {
	s := c.samples[call]
	cutoff := now.Add(-c.window)
	i := sort.Search(len(s), func(i int) bool { return !s[i].at.Before(cutoff) })
	return s[i:]
}

// nearestRank returns the smallest value with at least pct percent of the
// sorted values at or below it.
func nearestRank(sorted []int64, pct float64) int64 {
	rank := int(math.Ceil(pct / 100 * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}
