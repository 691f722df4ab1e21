package engine

import (
	"context"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/lists"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
)

// ConvertMarkedParagraphsToLists turns paragraphs that start with a typed
// list marker into real list items and strips the marker text. It returns
// the number of paragraphs converted.
//
// Bullets are created first, except on paragraphs that already carry one,
// so an existing list keeps its preset. The tree is then fetched again and markers
// are re-detected, so marker deletion never relies on offsets from before
// the bullet batch. Only paragraphs that now carry a bullet lose their
// marker.
func (e *Engine) ConvertMarkedParagraphsToLists(ctx context.Context, sel docmodel.Selector, within *docmodel.Range) (int, error) {
	var converted int
	err := e.run(ctx, sel, "convert lists", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		matches := lists.Detect(snap.Content, within)
		if len(matches) == 0 {
			return nil
		}

		bullets := snap.NewBatch()
		for _, m := range matches {
			if m.Bulleted {
				continue
			}
			bullets.Add(mutation.CreateBullets(m.Paragraph, m.Style.Preset()))
		}
		if bullets.Len() > 0 {
			if _, err := op.Submit(ctx, bullets); err != nil {
				return err
			}
			snap, err = op.Fetch(ctx)
			if err != nil {
				return err
			}
		}
		deletes := snap.NewBatch()
		for _, m := range lists.Detect(snap.Content, within) {
			if !m.Bulleted {
				continue
			}
			deletes.Add(mutation.DeleteRange(m.Marker()))
			converted++
		}
		_, err = op.Submit(ctx, deletes)
		return err
	})
	return converted, err
}

// ApplyBulletList makes every paragraph overlapping r a list item.
func (e *Engine) ApplyBulletList(ctx context.Context, sel docmodel.Selector, r docmodel.Range, style lists.Style) error {
	if style == lists.StyleNone {
		return docerr.New(docerr.KindInvalidRequest, "bullet style is required")
	}
	if r.Empty() {
		return docerr.New(docerr.KindInvalidRequest, "invalid range %v", r)
	}
	return e.run(ctx, sel, "apply bullets", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkRange(snap, r); err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(mutation.CreateBullets(r, style.Preset()))
		_, err = op.Submit(ctx, b)
		return err
	})
}

// RemoveBulletList removes list membership from paragraphs overlapping r.
func (e *Engine) RemoveBulletList(ctx context.Context, sel docmodel.Selector, r docmodel.Range) error {
	if r.Empty() {
		return docerr.New(docerr.KindInvalidRequest, "invalid range %v", r)
	}
	return e.run(ctx, sel, "remove bullets", func(op *pipeline.Operation) error {
		snap, err := op.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := checkRange(snap, r); err != nil {
			return err
		}
		b := snap.NewBatch()
		b.Add(mutation.RemoveBullets(r))
		_, err = op.Submit(ctx, b)
		return err
	})
}
