// Package pipelinetest provides a scripted remote for exercising logical
// operations without a network.
package pipelinetest

import (
	"context"
	"sync"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
)

// Remote serves fetches from a queue of documents and records every
// applied batch. The last queued document is served for any further
// fetches.
type Remote struct {
	mu sync.Mutex

	Docs     []*docmodel.Document
	FetchErr error
	ApplyErr error

	// Replies, when set, is returned for the n-th applied batch.
	Replies map[int][]mutation.Reply

	Fetches   int
	Batches   [][]*mutation.Request
	Selectors []docmodel.Selector
}

func New(docs ...*docmodel.Document) *Remote {
	return &Remote{Docs: docs}
}

func (r *Remote) FetchDocument(ctx context.Context, sel docmodel.Selector, fields string) (*docmodel.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fetches++
	r.Selectors = append(r.Selectors, sel)
	if r.FetchErr != nil {
		return nil, r.FetchErr
	}
	i := r.Fetches - 1
	if i >= len(r.Docs) {
		i = len(r.Docs) - 1
	}
	return r.Docs[i], nil
}

func (r *Remote) ApplyMutations(ctx context.Context, sel docmodel.Selector, reqs []*mutation.Request) (*mutation.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ApplyErr != nil {
		return nil, r.ApplyErr
	}
	r.Batches = append(r.Batches, reqs)
	r.Selectors = append(r.Selectors, sel)
	return &mutation.Result{DocumentID: sel.DocumentID, Replies: r.Replies[len(r.Batches)-1]}, nil
}

// Calls returns the total number of remote calls made.
func (r *Remote) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Fetches + len(r.Batches)
}

// All returns every applied request in application order.
func (r *Remote) All() []*mutation.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*mutation.Request
	for _, b := range r.Batches {
		out = append(out, b...)
	}
	return out
}
