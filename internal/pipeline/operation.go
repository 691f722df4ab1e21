package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
	"github.com/EastAgile/google-docs-mcp/internal/resolve"
)

// Remote is the pair of calls every logical operation is built from.
type Remote interface {
	FetchDocument(ctx context.Context, sel docmodel.Selector, fields string) (*docmodel.Document, error)
	ApplyMutations(ctx context.Context, sel docmodel.Selector, reqs []*mutation.Request) (*mutation.Result, error)
}

// Phase is the state of a logical operation.
type Phase string

const (
	PhasePlanning  Phase = "planning"
	PhaseSubmitted Phase = "submitted"
	PhaseRefetch   Phase = "refetch"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// Operation drives one logical operation against one document through
// fetch and submit phases. Every applied batch invalidates all snapshots
// taken before it; offsets must be re-resolved from a fresh Fetch.
type Operation struct {
	mu sync.Mutex

	ID       string
	Name     string
	Selector docmodel.Selector

	phase     Phase
	batches   int
	requests  int
	fetches   int
	errMsg    string
	history   []Phase
	createdAt time.Time
	updatedAt time.Time

	remote  Remote
	sink    Sink
	gen     int
	err     error
	release func()
}

// NewOperation creates an operation that is not registered with any
// coordinator.
func NewOperation(id, name string, sel docmodel.Selector, remote Remote, sink Sink) *Operation {
	if sink == nil {
		sink = NopSink{}
	}
	now := time.Now()
	return &Operation{
		ID:        id,
		Name:      name,
		Selector:  sel,
		phase:     PhasePlanning,
		history:   []Phase{PhasePlanning},
		createdAt: now,
		updatedAt: now,
		remote:    remote,
		sink:      sink,
	}
}

// Snapshot is a fetched document tree bound to the operation generation it
// was fetched in.
type Snapshot struct {
	Doc     *docmodel.Document
	Content []*docmodel.StructuralElement

	op   *Operation
	gen  int
	segs []resolve.Segment
}

// Segments returns the flattened text view, computed once per snapshot.
func (s *Snapshot) Segments() []resolve.Segment {
	if s.segs == nil {
		s.segs = resolve.Flatten(s.Content)
	}
	return s.segs
}

// Stale reports whether a batch has been applied since the snapshot was
// fetched.
func (s *Snapshot) Stale() bool {
	s.op.mu.Lock()
	defer s.op.mu.Unlock()
	return s.gen != s.op.gen
}

// NewBatch starts a batch whose offsets come from this snapshot.
func (s *Snapshot) NewBatch() *Batch {
	return &Batch{gen: s.gen, tabID: s.op.Selector.TabID}
}

// Batch collects requests computed against one snapshot.
type Batch struct {
	gen   int
	tabID string
	reqs  []*mutation.Request
}

// Add appends requests, dropping nil (elided) ones.
func (b *Batch) Add(reqs ...*mutation.Request) {
	for _, r := range reqs {
		if r == nil {
			continue
		}
		if b.tabID != "" {
			r.SetTab(b.tabID)
		}
		b.reqs = append(b.reqs, r)
	}
}

func (b *Batch) Len() int { return len(b.reqs) }

// Requests returns the collected requests in insertion order.
func (b *Batch) Requests() []*mutation.Request { return b.reqs }

// Fetch reads the authoritative tree. After a submitted batch this is the
// re-fetch barrier.
func (o *Operation) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := o.checkState(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	if o.batches > 0 {
		o.setPhaseLocked(PhaseRefetch)
	}
	o.fetches++
	o.mu.Unlock()

	doc, err := o.remote.FetchDocument(ctx, o.Selector, "")
	if err != nil {
		return nil, o.fail(docerr.Wrap(err, o.Selector.DocumentID, "fetch document"))
	}
	content, ok := doc.Content(o.Selector.TabID)
	if !ok {
		err := &docerr.Error{Kind: docerr.KindNotFound, DocumentID: o.Selector.DocumentID, Op: "fetch document",
			Err: docerr.New(docerr.KindNotFound, "tab %q not found", o.Selector.TabID)}
		return nil, o.fail(err)
	}

	o.mu.Lock()
	o.setPhaseLocked(PhasePlanning)
	gen := o.gen
	o.mu.Unlock()

	o.sink.Emit(ctx, "document fetched", "op_id", o.ID, "doc_id", o.Selector.DocumentID, "elements", len(content))
	return &Snapshot{Doc: doc, Content: content, op: o, gen: gen}, nil
}

// Submit sequences and applies a batch. An empty batch makes no remote
// call and invalidates nothing. A batch computed before the last applied
// batch is rejected as stale.
func (o *Operation) Submit(ctx context.Context, b *Batch) (*mutation.Result, error) {
	if err := o.checkState(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	stale := b.gen != o.gen
	o.mu.Unlock()
	if stale {
		return nil, o.fail(&docerr.Error{Kind: docerr.KindStale, DocumentID: o.Selector.DocumentID, Op: o.Name,
			Err: docerr.New(docerr.KindStale, "batch computed before the last applied write")})
	}
	if b.Len() == 0 {
		o.sink.Emit(ctx, "batch elided", "op_id", o.ID, "doc_id", o.Selector.DocumentID)
		return nil, nil
	}

	ordered, err := mutation.Sequence(b.reqs)
	if err != nil {
		return nil, o.fail(docerr.Wrap(err, o.Selector.DocumentID, o.Name))
	}

	o.mu.Lock()
	o.setPhaseLocked(PhaseSubmitted)
	o.mu.Unlock()

	res, err := o.remote.ApplyMutations(ctx, o.Selector, ordered)
	if err != nil {
		return nil, o.fail(docerr.Wrap(err, o.Selector.DocumentID, "apply mutations"))
	}

	o.mu.Lock()
	o.gen++
	o.batches++
	o.requests += len(ordered)
	batch := o.batches
	o.mu.Unlock()

	o.sink.Emit(ctx, "batch applied", "op_id", o.ID, "doc_id", o.Selector.DocumentID, "batch", batch, "requests", len(ordered))
	return res, nil
}

// Finish ends the operation and releases its document.
func (o *Operation) Finish(err error) {
	o.mu.Lock()
	if err != nil {
		if o.err == nil {
			o.err = err
			o.errMsg = err.Error()
		}
		o.setPhaseLocked(PhaseFailed)
	} else if o.phase != PhaseFailed {
		o.setPhaseLocked(PhaseDone)
	}
	release := o.release
	o.release = nil
	o.mu.Unlock()

	if release != nil {
		release()
	}
}

func (o *Operation) checkState() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.phase {
	case PhaseFailed:
		return o.err
	case PhaseDone:
		return docerr.New(docerr.KindInvalidRequest, "operation %s already finished", o.ID)
	}
	return nil
}

func (o *Operation) fail(err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
	o.errMsg = err.Error()
	o.setPhaseLocked(PhaseFailed)
	return err
}

func (o *Operation) setPhaseLocked(p Phase) {
	if o.phase != p {
		o.history = append(o.history, p)
	}
	o.phase = p
	o.updatedAt = time.Now()
}

// Phase returns the current phase.
func (o *Operation) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// OperationStatus is a read-only, JSON-safe copy of operation state.
type OperationStatus struct {
	ID         string    `json:"operation_id"`
	Name       string    `json:"name"`
	DocumentID string    `json:"document_id"`
	TabID      string    `json:"tab_id,omitempty"`
	Phase      Phase     `json:"phase"`
	History    []Phase   `json:"history"`
	Fetches    int       `json:"fetches"`
	Batches    int       `json:"batches"`
	Requests   int       `json:"requests"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Status returns a copy of the operation state.
func (o *Operation) Status() OperationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return OperationStatus{
		ID:         o.ID,
		Name:       o.Name,
		DocumentID: o.Selector.DocumentID,
		TabID:      o.Selector.TabID,
		Phase:      o.phase,
		History:    append([]Phase(nil), o.history...),
		Fetches:    o.fetches,
		Batches:    o.batches,
		Requests:   o.requests,
		Error:      o.errMsg,
		CreatedAt:  o.createdAt,
		UpdatedAt:  o.updatedAt,
	}
}
