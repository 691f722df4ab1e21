package engine

import (
	"context"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/resolve"
)

// TextTarget selects text either by explicit range or by the
// occurrence-th match of Text.
type TextTarget struct {
	Range      *docmodel.Range `json:"range,omitempty"`
	Text       string          `json:"text,omitempty"`
	Occurrence int             `json:"occurrence,omitempty"`
}

func (t TextTarget) locate(snap *pipeline.Snapshot) (docmodel.Range, error) {
	if t.Range != nil {
		return *t.Range, checkRange(snap, *t.Range)
	}
	if t.Text == "" {
		return docmodel.Range{}, docerr.New(docerr.KindInvalidRequest, "target needs a range or text")
	}
	occ := t.Occurrence
	if occ == 0 {
		occ = 1
	}
	return findText(snap, t.Text, occ)
}

// ParagraphTarget selects the paragraphs covering an offset, a range or a
// text match.
type ParagraphTarget struct {
	Offset *int `json:"offset,omitempty"`
	TextTarget
}

func (t ParagraphTarget) locate(snap *pipeline.Snapshot) (docmodel.Range, error) {
	if t.Offset != nil {
		return resolve.FindEnclosingParagraph(snap.Content, *t.Offset)
	}
	r, err := t.TextTarget.locate(snap)
	if err != nil {
		return docmodel.Range{}, err
	}
	first, err := resolve.FindEnclosingParagraph(snap.Content, r.Start)
	if err != nil {
		return docmodel.Range{}, err
	}
	last, err := resolve.FindEnclosingParagraph(snap.Content, r.End-1)
	if err != nil {
		return docmodel.Range{}, err
	}
	return docmodel.Range{Start: first.Start, End: last.End}, nil
}

// InsertText inserts text at offset.
func (e *Engine) InsertText(ctx context.Context, sel docmodel.Selector, offset int, text string) error {
	if text == "" {
		return docerr.New(docerr.KindInvalidRequest, "text must not be empty")
	}
	return e.run(ctx, sel, "insert text", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkInsertAt(snap, offset); err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(mutation.InsertText(offset, text))
		_, err = op.Submit(ctx, b)
		return err
	})
}

// AppendText inserts text before the final newline of the content. It
// returns the offset the text was inserted at.
func (e *Engine) AppendText(ctx context.Context, sel docmodel.Selector, text string) (int, error) {
	if text == "" {
		return 0, docerr.New(docerr.KindInvalidRequest, "text must not be empty")
	}
	var at int
	err := e.run(ctx, sel, "append text", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		at = docmodel.EndOfContent(snap.Content)
		b := snap.NewBatch()
		b.Add(mutation.InsertText(at, text))
		_, err = op.Submit(ctx, b)
		return err
	})
	return at, err
}

// DeleteRange removes the content in r. The final newline of the content
// cannot be deleted.
func (e *Engine) DeleteRange(ctx context.Context, sel docmodel.Selector, r docmodel.Range) error {
	if r.Empty() || r.Start < 1 {
		return docerr.New(docerr.KindInvalidRequest, "invalid range %v", r)
	}
	return e.run(ctx, sel, "delete range", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if end := docmodel.EndOfContent(snap.Content); r.End > end {
			return docerr.New(docerr.KindOutOfBounds, "range %v reaches the final newline at %d", r, end)
		}
		b := snap.NewBatch()
		b.Add(mutation.DeleteRange(r))
		_, err = op.Submit(ctx, b)
		return err
	})
}

// FormatText applies character styles to the target and returns the range
// styled.
func (e *Engine) FormatText(ctx context.Context, sel docmodel.Selector, target TextTarget, opts mutation.TextStyleOptions) (docmodel.Range, error) {
	if opts.Empty() {
		return docmodel.Range{}, docerr.New(docerr.KindInvalidRequest, "no text style fields to apply")
	}
	var r docmodel.Range
	err := e.run(ctx, sel, "format text", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if r, err = target.locate(snap); err != nil {
			return err
		}
		req, err := mutation.TextStyle(r, opts)
		if err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(req)
		_, err = op.Submit(ctx, b)
		return err
	})
	return r, err
}

// FormatParagraph applies paragraph styles to the paragraphs covering the
// target and returns their range.
func (e *Engine) FormatParagraph(ctx context.Context, sel docmodel.Selector, target ParagraphTarget, opts mutation.ParagraphStyleOptions) (docmodel.Range, error) {
	if opts.Empty() {
		return docmodel.Range{}, docerr.New(docerr.KindInvalidRequest, "no paragraph style fields to apply")
	}
	var r docmodel.Range
	err := e.run(ctx, sel, "format paragraph", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if r, err = target.locate(snap); err != nil {
			return err
		}
		req, err := mutation.ParagraphStyle(r, opts)
		if err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(req)
		_, err = op.Submit(ctx, b)
		return err
	})
	return r, err
}

// InsertPageBreak inserts a page break at offset.
func (e *Engine) InsertPageBreak(ctx context.Context, sel docmodel.Selector, offset int) error {
	return e.run(ctx, sel, "insert page break", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkInsertAt(snap, offset); err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(mutation.InsertPageBreak(offset))
		_, err = op.Submit(ctx, b)
		return err
	})
}

// InsertImage inserts the image at uri and returns its object ID. Width
// and height are in points; zero keeps the natural size.
func (e *Engine) InsertImage(ctx context.Context, sel docmodel.Selector, offset int, uri string, width, height float64) (string, error) {
	req, err := mutation.InsertImage(offset, uri, width, height)
	if err != nil {
		return "", err
	}
	var objectID string
	err = e.run(ctx, sel, "insert image", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkInsertAt(snap, offset); err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(req)
		res, err := op.Submit(ctx, b)
		if err != nil {
			return err
		}
		if res != nil && len(res.Replies) > 0 && res.Replies[0].InsertInlineImage != nil {
			objectID = res.Replies[0].InsertInlineImage.ObjectID
		}
		return nil
	})
	return objectID, err
}

// FindParagraphsByStyle is not built yet.
func (e *Engine) FindParagraphsByStyle(ctx context.Context, sel docmodel.Selector, namedStyle string) ([]docmodel.Range, error) {
	return nil, &docerr.Error{Kind: docerr.KindUnimplemented, DocumentID: sel.DocumentID, Op: "find paragraphs by style",
		Err: docerr.ErrUnimplemented}
}

// AddComment is not built yet; comments live in a separate remote API.
func (e *Engine) AddComment(ctx context.Context, sel docmodel.Selector, target TextTarget, body string) error {
	return &docerr.Error{Kind: docerr.KindUnimplemented, DocumentID: sel.DocumentID, Op: "add comment",
		Err: docerr.ErrUnimplemented}
}
