package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/lists"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/resolve"
)

// CodeFont is the font applied to inline code spans.
const CodeFont = "Courier New"

// ImportResult summarizes an InsertContent call.
type ImportResult struct {
	Offset     int `json:"offset"`
	Paragraphs int `json:"paragraphs"`
	Tables     int `json:"tables"`
}

type blockGroup struct {
	table  *docmodel.Block
	blocks []docmodel.Block
}

func groupBlocks(blocks []docmodel.Block) []blockGroup {
	var out []blockGroup
	for i := range blocks {
		b := blocks[i]
		if b.Kind == docmodel.BlockTable {
			out = append(out, blockGroup{table: &blocks[i]})
			continue
		}
		if n := len(out); n > 0 && out[n-1].table == nil {
			out[n-1].blocks = append(out[n-1].blocks, b)
			continue
		}
		out = append(out, blockGroup{blocks: []docmodel.Block{b}})
	}
	return out
}

// InsertContent writes parsed blocks at the start of the paragraph
// containing offset. Groups are written last-first at the same offset so
// each lands before the ones already written.
func (e *Engine) InsertContent(ctx context.Context, sel docmodel.Selector, offset int, frag *docmodel.Fragment) (ImportResult, error) {
	if frag == nil || len(frag.Blocks) == 0 {
		return ImportResult{}, docerr.New(docerr.KindInvalidRequest, "nothing to import")
	}
	groups := groupBlocks(frag.Blocks)
	for _, g := range groups {
		if g.table != nil {
			if _, err := tableSpec(g.table, 0); err != nil {
				return ImportResult{}, err
			}
		}
	}

	var res ImportResult
	err := e.run(ctx, sel, "insert content", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkInsertAt(snap, offset); err != nil {
			return err
		}
		para, err := resolve.FindEnclosingParagraph(snap.Content, offset)
		if err != nil {
			return err
		}
		at := para.Start
		res.Offset = at

		for i := len(groups) - 1; i >= 0; i-- {
			if snap.Stale() {
				if snap, err = op.Fetch(ctx); err != nil {
					return err
				}
			}
			g := groups[i]
			if g.table != nil {
				spec, _ := tableSpec(g.table, at)
				if _, err := e.populateTable(ctx, op, snap, spec); err != nil {
					return err
				}
				res.Tables++
				continue
			}
			if err := e.insertBlocks(ctx, op, snap, at, g.blocks); err != nil {
				return err
			}
			res.Paragraphs += len(g.blocks)
		}
		return nil
	})
	return res, err
}

func tableSpec(b *docmodel.Block, at int) (TableSpec, error) {
	spec := TableSpec{Offset: at, Headers: b.Headers, Rows: b.Rows, BoldHeaders: true}
	if len(spec.Headers) == 0 && len(spec.Rows) > 0 {
		spec.Headers, spec.Rows = spec.Rows[0], spec.Rows[1:]
	}
	return spec, spec.validate()
}

// spanText keeps each block a single paragraph.
func spanText(s docmodel.Span) string {
	return strings.ReplaceAll(s.Text, "\n", " ")
}

// insertBlocks writes paragraph-like blocks as one insertion, then styles
// them against the re-fetched tree.
func (e *Engine) insertBlocks(ctx context.Context, op *pipeline.Operation, snap *pipeline.Snapshot, at int, blocks []docmodel.Block) error {
	var sb strings.Builder
	for _, blk := range blocks {
		for _, s := range blk.Spans {
			sb.WriteString(spanText(s))
		}
		sb.WriteByte('\n')
	}
	text := sb.String()

	ins := snap.NewBatch()
	ins.Add(mutation.InsertText(at, text))
	if _, err := op.Submit(ctx, ins); err != nil {
		return err
	}

	snap, err := op.Fetch(ctx)
	if err != nil {
		return err
	}
	written := docmodel.Range{Start: at, End: at + docmodel.Len16(text)}
	if got := resolve.TextIn(snap.Segments(), written); got != text {
		return docerr.New(docerr.KindStale, "inserted text not found at %v", written)
	}

	style := snap.NewBatch()
	pos := at
	listStart, listOrdered := -1, false
	flushList := func(end int) {
		if listStart < 0 {
			return
		}
		preset := lists.StyleDisc.Preset()
		if listOrdered {
			preset = lists.StyleDecimal.Preset()
		}
		style.Add(mutation.CreateBullets(docmodel.Range{Start: listStart, End: end}, preset))
		listStart = -1
	}

	for _, blk := range blocks {
		start := pos
		for _, s := range blk.Spans {
			n := docmodel.Len16(spanText(s))
			if !s.Plain() {
				req, err := mutation.TextStyle(docmodel.Range{Start: pos, End: pos + n}, spanStyle(s))
				if err != nil {
					return err
				}
				style.Add(req)
			}
			pos += n
		}
		pos++
		para := docmodel.Range{Start: start, End: pos}

		named := "NORMAL_TEXT"
		if blk.Kind == docmodel.BlockHeading {
			named = fmt.Sprintf("HEADING_%d", min(max(blk.Level, 1), 6))
		}
		req, err := mutation.ParagraphStyle(para, mutation.ParagraphStyleOptions{NamedStyleType: &named})
		if err != nil {
			return err
		}
		style.Add(req)

		if blk.Kind == docmodel.BlockListItem {
			if listStart >= 0 && listOrdered != blk.Ordered {
				flushList(start)
			}
			if listStart < 0 {
				listStart, listOrdered = start, blk.Ordered
			}
			continue
		}
		flushList(start)
	}
	flushList(pos)

	_, err = op.Submit(ctx, style)
	return err
}

func spanStyle(s docmodel.Span) mutation.TextStyleOptions {
	var o mutation.TextStyleOptions
	t := true
	if s.Bold {
		o.Bold = &t
	}
	if s.Italic {
		o.Italic = &t
	}
	if s.Code {
		font := CodeFont
		o.FontFamily = &font
	}
	if s.Link != "" {
		link := s.Link
		o.LinkURL = &link
	}
	return o
}
