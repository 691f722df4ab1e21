package engine

import (
	"context"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/resolve"
)

// TableSpec describes a table to insert and fill.
type TableSpec struct {
	Offset       int        `json:"offset"`
	Headers      []string   `json:"headers"`
	Rows         [][]string `json:"rows"`
	BoldHeaders  bool       `json:"bold_headers"`
	BoldTotalRow bool       `json:"bold_total_row"`
}

func (s TableSpec) validate() error {
	if len(s.Headers) == 0 {
		return docerr.New(docerr.KindInvalidRequest, "table needs at least one header")
	}
	for i, row := range s.Rows {
		if len(row) > len(s.Headers) {
			return docerr.New(docerr.KindInvalidRequest, "row %d has %d values for %d columns", i, len(row), len(s.Headers))
		}
	}
	return nil
}

// TableResult reports where the populated table ended up.
type TableResult struct {
	TableAnchorOffset int `json:"table_anchor_offset"`
	Rows              int `json:"rows"`
	Columns           int `json:"columns"`
}

// PopulateTable inserts a table at spec.Offset and fills it with the header
// row followed by the data rows.
func (e *Engine) PopulateTable(ctx context.Context, sel docmodel.Selector, spec TableSpec) (TableResult, error) {
	if err := spec.validate(); err != nil {
		return TableResult{}, err
	}
	var res TableResult
	err := e.run(ctx, sel, "populate table", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkInsertAt(snap, spec.Offset); err != nil {
			return err
		}
		res, err = e.populateTable(ctx, op, snap, spec)
		return err
	})
	return res, err
}

// populateTable runs the four table phases: insert the empty table, learn
// the cell offsets, insert every value in descending offset order, then
// style the runs that now exist.
func (e *Engine) populateTable(ctx context.Context, op *pipeline.Operation, snap *pipeline.Snapshot, spec TableSpec) (TableResult, error) {
	values := append([][]string{spec.Headers}, spec.Rows...)
	cols := len(spec.Headers)

	create := snap.NewBatch()
	req, err := mutation.InsertTable(spec.Offset, len(values), cols)
	if err != nil {
		return TableResult{}, err
	}
	create.Add(req)
	if _, err := op.Submit(ctx, create); err != nil {
		return TableResult{}, err
	}

	// The service places a newline before an inserted table.
	snap, err = op.Fetch(ctx)
	if err != nil {
		return TableResult{}, err
	}
	table, err := resolve.FindTable(snap.Content, spec.Offset+1, e.tolerance)
	if err != nil {
		return TableResult{}, err
	}
	fill := snap.NewBatch()
	for r, row := range values {
		for c, v := range row {
			cell, err := resolve.CellAt(table, r, c)
			if err != nil {
				return TableResult{}, err
			}
			fill.Add(mutation.InsertText(cell.Content.Start, v))
		}
	}
	if _, err := op.Submit(ctx, fill); err != nil {
		return TableResult{}, err
	}

	snap, err = op.Fetch(ctx)
	if err != nil {
		return TableResult{}, err
	}
	table, err = resolve.FindTable(snap.Content, table.StartIndex, e.tolerance)
	if err != nil {
		return TableResult{}, err
	}
	style := snap.NewBatch()
	if spec.BoldHeaders {
		if err := boldRow(style, table, 0, cols); err != nil {
			return TableResult{}, err
		}
	}
	if spec.BoldTotalRow && len(spec.Rows) > 0 {
		if err := boldRow(style, table, len(values)-1, cols); err != nil {
			return TableResult{}, err
		}
	}
	if _, err := op.Submit(ctx, style); err != nil {
		return TableResult{}, err
	}

	return TableResult{TableAnchorOffset: table.StartIndex, Rows: len(values), Columns: cols}, nil
}

func boldRow(b *pipeline.Batch, table *docmodel.StructuralElement, row, cols int) error {
	bold := true
	for c := 0; c < cols; c++ {
		cell, err := resolve.CellAt(table, row, c)
		if err != nil {
			return err
		}
		req, err := mutation.TextStyle(cell.Content, mutation.TextStyleOptions{Bold: &bold})
		if err != nil {
			return err
		}
		b.Add(req)
	}
	return nil
}

// InsertTable inserts an empty rows x cols table at offset.
func (e *Engine) InsertTable(ctx context.Context, sel docmodel.Selector, offset, rows, cols int) error {
	req, err := mutation.InsertTable(offset, rows, cols)
	if err != nil {
		return err
	}
	return e.run(ctx, sel, "insert table", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkInsertAt(snap, offset); err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(req)
		_, err = op.Submit(ctx, b)
		return err
	})
}

// CellEdit replaces and/or styles the content of one table cell. Nil
// fields are left untouched.
type CellEdit struct {
	Anchor         int                             `json:"anchor"`
	Row            int                             `json:"row"`
	Column         int                             `json:"column"`
	Text           *string                         `json:"text,omitempty"`
	TextStyle      *mutation.TextStyleOptions      `json:"text_style,omitempty"`
	ParagraphStyle *mutation.ParagraphStyleOptions `json:"paragraph_style,omitempty"`
}

func (c CellEdit) styled() bool {
	return (c.TextStyle != nil && !c.TextStyle.Empty()) ||
		(c.ParagraphStyle != nil && !c.ParagraphStyle.Empty())
}

// EditCell rewrites a cell's text, then styles the cell content as it is
// after the rewrite.
func (e *Engine) EditCell(ctx context.Context, sel docmodel.Selector, edit CellEdit) error {
	if edit.Text == nil && !edit.styled() {
		return docerr.New(docerr.KindInvalidRequest, "cell edit has nothing to change")
	}
	return e.run(ctx, sel, "edit cell", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		table, err := resolve.FindTable(snap.Content, edit.Anchor, e.tolerance)
		if err != nil {
			return err
		}
		cell, err := resolve.CellAt(table, edit.Row, edit.Column)
		if err != nil {
			return err
		}

		if edit.Text != nil {
			b := snap.NewBatch()
			b.Add(mutation.DeleteRange(cell.Content), mutation.InsertText(cell.Content.Start, *edit.Text))
			if _, err := op.Submit(ctx, b); err != nil {
				return err
			}
		}
		if !edit.styled() {
			return nil
		}

		if snap.Stale() {
			if snap, err = op.Fetch(ctx); err != nil {
				return err
			}
			if table, err = resolve.FindTable(snap.Content, table.StartIndex, e.tolerance); err != nil {
				return err
			}
			if cell, err = resolve.CellAt(table, edit.Row, edit.Column); err != nil {
				return err
			}
		}

		b := snap.NewBatch()
		if edit.TextStyle != nil {
			req, err := mutation.TextStyle(cell.Content, *edit.TextStyle)
			if err != nil {
				return err
			}
			b.Add(req)
		}
		if edit.ParagraphStyle != nil {
			para := docmodel.Range{Start: cell.Content.Start, End: cell.Content.End + 1}
			req, err := mutation.ParagraphStyle(para, *edit.ParagraphStyle)
			if err != nil {
				return err
			}
			b.Add(req)
		}
		_, err = op.Submit(ctx, b)
		return err
	})
}
