package engine

import (
	"context"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/resolve"
)

// ReadText returns the flattened text of the selected content.
func (e *Engine) ReadText(ctx context.Context, sel docmodel.Selector) (string, error) {
	var text string
	err := e.run(ctx, sel, "read text", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		text = resolve.Text(snap.Segments())
		return nil
	})
	return text, err
}

// LocateText returns the range of the occurrence-th match of needle.
func (e *Engine) LocateText(ctx context.Context, sel docmodel.Selector, needle string, occurrence int) (docmodel.Range, error) {
	var r docmodel.Range
	err := e.run(ctx, sel, "locate text", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		r, err = findText(snap, needle, occurrence)
		return err
	})
	return r, err
}

// LocateParagraph returns the range of the paragraph containing offset.
func (e *Engine) LocateParagraph(ctx context.Context, sel docmodel.Selector, offset int) (docmodel.Range, error) {
	var r docmodel.Range
	err := e.run(ctx, sel, "locate paragraph", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		r, err = resolve.FindEnclosingParagraph(snap.Content, offset)
		return err
	})
	return r, err
}

// LocateCell returns the cell at (row, col) of the table nearest anchor.
func (e *Engine) LocateCell(ctx context.Context, sel docmodel.Selector, anchor, row, col int) (resolve.CellRange, error) {
	var cell resolve.CellRange
	err := e.run(ctx, sel, "locate cell", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		cell, err = resolve.FindCell(snap.Content, anchor, row, col, e.tolerance)
		return err
	})
	return cell, err
}
