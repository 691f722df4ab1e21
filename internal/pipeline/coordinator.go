package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

type ctxKey int

const opIDKey ctxKey = iota

// WithOperationID attaches a caller-chosen operation ID to ctx.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, opIDKey, id)
}

// OperationIDFrom returns the operation ID attached to ctx, if any.
func OperationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(opIDKey).(string)
	return id, ok && id != ""
}

// Coordinator hands out operations, one at a time per document, and keeps
// their status around for inspection.
type Coordinator struct {
	remote Remote
	sink   Sink
	ops    *Store
	locks  *docLocks
	log    *slog.Logger

	cleanupEvery time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator creates a coordinator. Call Start to enable TTL eviction.
func NewCoordinator(remote Remote, sink Sink, ttl time.Duration, log *slog.Logger) *Coordinator {
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		remote:       remote,
		sink:         sink,
		ops:          NewStore(ttl),
		locks:        newDocLocks(),
		log:          log,
		cleanupEvery: 5 * time.Minute,
	}
}

// Start launches the operation store cleanup loop.
func (c *Coordinator) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				c.ops.Cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Begin waits for exclusive use of the document and starts an operation on
// it. The caller must call Finish on the returned operation.
func (c *Coordinator) Begin(ctx context.Context, sel docmodel.Selector, name string) (*Operation, error) {
	if sel.DocumentID == "" {
		return nil, docerr.New(docerr.KindInvalidRequest, "document id is required")
	}
	release, err := c.locks.acquire(ctx, sel.DocumentID)
	if err != nil {
		return nil, docerr.Wrap(err, sel.DocumentID, name)
	}

	id, ok := OperationIDFrom(ctx)
	if !ok {
		id = uuid.NewString()
	}
	op := NewOperation(id, name, sel, c.remote, c.sink)
	op.release = release
	if !c.ops.Put(op) {
		release()
		return nil, &docerr.Error{Kind: docerr.KindInvalidRequest, DocumentID: sel.DocumentID, Op: name,
			Err: docerr.New(docerr.KindInvalidRequest, "operation %s is still running", id)}
	}

	c.log.Debug("operation started", "op_id", id, "op", name, "doc_id", sel.DocumentID, "tab_id", sel.TabID)
	return op, nil
}

// Get returns a tracked operation by ID.
func (c *Coordinator) Get(id string) *Operation {
	return c.ops.Get(id)
}

// Tracked returns the number of operations in the store.
func (c *Coordinator) Tracked() int {
	return c.ops.Len()
}
