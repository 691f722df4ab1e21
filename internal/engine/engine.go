// Package engine exposes the document operations built on resolution,
// list detection and batch sequencing. Every operation fetches a fresh
// tree; offsets are recomputed after each applied batch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/resolve"
)

// Options tunes an Engine.
type Options struct {
	// AnchorTolerance is how far a table may drift from its anchor offset.
	AnchorTolerance int
	Sink            pipeline.Sink
}

// Engine runs logical operations through a coordinator.
type Engine struct {
	coord     *pipeline.Coordinator
	tolerance int
	sink      pipeline.Sink
}

func New(coord *pipeline.Coordinator, opts Options) *Engine {
	if opts.AnchorTolerance <= 0 {
		opts.AnchorTolerance = resolve.DefaultAnchorTolerance
	}
	if opts.Sink == nil {
		opts.Sink = pipeline.NopSink{}
	}
	return &Engine{coord: coord, tolerance: opts.AnchorTolerance, sink: opts.Sink}
}

// Coordinator returns the coordinator operations run through.
func (e *Engine) Coordinator() *pipeline.Coordinator { return e.coord }

// run executes fn as one logical operation holding the document.
func (e *Engine) run(ctx context.Context, sel docmodel.Selector, name string, fn func(*pipeline.Operation) error) error {
	start := time.Now()
	op, err := e.coord.Begin(ctx, sel, name)
	if err != nil {
		return err
	}
	err = withContext(fn(op), sel.DocumentID, name)
	op.Finish(err)

	st := op.Status()
	attrs := []any{"op_id", op.ID, "op", name, "doc_id", sel.DocumentID,
		"batches", st.Batches, "fetches", st.Fetches, "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		attrs = append(attrs, "error", err.Error(), "kind", docerr.KindOf(err).String())
	}
	e.sink.Emit(ctx, "operation finished", attrs...)
	return err
}

// withContext attaches the document and operation unless an inner layer
// already did.
func withContext(err error, docID, op string) error {
	if err == nil {
		return nil
	}
	var de *docerr.Error
	if errors.As(err, &de) && de.DocumentID != "" {
		return err
	}
	return docerr.Wrap(err, docID, op)
}

// SuggestError is a NotFound text lookup carrying the closest line of
// document text.
type SuggestError struct {
	Err        error
	Suggestion string
}

func (e *SuggestError) Error() string {
	return fmt.Sprintf("%v (closest text: %q)", e.Err, e.Suggestion)
}

func (e *SuggestError) Unwrap() error { return e.Err }

// findText locates needle in a snapshot, attaching a hint on NotFound.
func findText(snap *pipeline.Snapshot, needle string, occurrence int) (docmodel.Range, error) {
	segs := snap.Segments()
	r, err := resolve.FindText(segs, needle, occurrence)
	if err != nil && errors.Is(err, docerr.ErrNotFound) {
		if hint, ok := resolve.Closest(segs, needle); ok {
			return r, &SuggestError{Err: err, Suggestion: hint}
		}
	}
	return r, err
}

// checkInsertAt rejects offsets outside the writable body.
func checkInsertAt(snap *pipeline.Snapshot, offset int) error {
	end := docmodel.EndOfContent(snap.Content)
	if offset < 1 || offset > end {
		return docerr.New(docerr.KindOutOfBounds, "offset %d outside document body [1,%d]", offset, end)
	}
	return nil
}

// checkRange rejects empty ranges and ranges reaching past the final
// newline.
func checkRange(snap *pipeline.Snapshot, r docmodel.Range) error {
	if r.Empty() || r.Start < 1 {
		return docerr.New(docerr.KindInvalidRequest, "invalid range %v", r)
	}
	if end := docmodel.EndOfContent(snap.Content); r.End > end+1 {
		return docerr.New(docerr.KindOutOfBounds, "range %v past document end %d", r, end)
	}
	return nil
}
