package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel/docbuild"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
)

func TestInsertContent_HeadingAndStyledParagraph(t *testing.T) {
	before := docbuild.New("doc-1")
	before.Paragraph("End")
	after := docbuild.New("doc-1")
	after.Paragraph("Title")
	after.Paragraph("Body ", "text")
	after.Paragraph("End")
	e, remote := newEngine(before.Document(), after.Document())

	frag := &docmodel.Fragment{Blocks: []docmodel.Block{
		{Kind: docmodel.BlockHeading, Level: 1, Spans: []docmodel.Span{{Text: "Title"}}},
		{Kind: docmodel.BlockParagraph, Spans: []docmodel.Span{{Text: "Body ", Bold: true}, {Text: "text"}}},
	}}
	res, err := e.InsertContent(context.Background(), sel, 2, frag)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Offset != 1 || res.Paragraphs != 2 || res.Tables != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(remote.Batches) != 2 {
		t.Fatalf("expected insert and style batches, got %d", len(remote.Batches))
	}
	if got := remote.Batches[0][0].InsertText; got.Text != "Title\nBody text\n" || got.Location.Index != 1 {
		t.Errorf("unexpected insert %+v", got)
	}

	var heading, bold bool
	for _, r := range remote.Batches[1] {
		switch r.Kind() {
		case mutation.KindParagraphStyle:
			if r.UpdateParagraphStyle.ParagraphStyle.NamedStyleType == "HEADING_1" && rangeOf(r) == (docmodel.Range{Start: 1, End: 7}) {
				heading = true
			}
		case mutation.KindTextStyle:
			if rangeOf(r) == (docmodel.Range{Start: 7, End: 12}) && r.UpdateTextStyle.Fields == "bold" {
				bold = true
			}
		}
	}
	if !heading || !bold {
		t.Errorf("expected heading and bold styles, got %v", remote.Batches[1])
	}
}

func TestInsertContent_ListItemsShareOneBulletRange(t *testing.T) {
	before := docbuild.New("doc-1")
	before.Paragraph("")
	after := docbuild.New("doc-1")
	after.Paragraph("one")
	after.Paragraph("two")
	after.Paragraph("")
	e, remote := newEngine(before.Document(), after.Document())

	frag := &docmodel.Fragment{Blocks: []docmodel.Block{
		docmodel.TextBlock(docmodel.BlockListItem, "one"),
		docmodel.TextBlock(docmodel.BlockListItem, "two"),
	}}
	if _, err := e.InsertContent(context.Background(), sel, 1, frag); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var bullets []*mutation.Request
	for _, r := range remote.Batches[1] {
		if r.Kind() == mutation.KindCreateBullets {
			bullets = append(bullets, r)
		}
	}
	if len(bullets) != 1 || rangeOf(bullets[0]) != (docmodel.Range{Start: 1, End: 9}) {
		t.Errorf("expected one bullet range [1,9), got %v", bullets)
	}
}

func TestInsertContent_DetectsMovedText(t *testing.T) {
	before := docbuild.New("doc-1")
	before.Paragraph("End")
	e, _ := newEngine(before.Document())

	frag := &docmodel.Fragment{Blocks: []docmodel.Block{docmodel.TextBlock(docmodel.BlockParagraph, "New")}}
	_, err := e.InsertContent(context.Background(), sel, 1, frag)
	if !errors.Is(err, docerr.ErrStale) {
		t.Errorf("expected stale error when the refetched tree lacks the text, got %v", err)
	}
}

func TestInsertContent_EmptyFragment(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	if _, err := e.InsertContent(context.Background(), sel, 1, &docmodel.Fragment{}); !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
	if remote.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", remote.Calls())
	}
}

func TestGroupBlocks(t *testing.T) {
	blocks := []docmodel.Block{
		docmodel.TextBlock(docmodel.BlockParagraph, "a"),
		docmodel.TextBlock(docmodel.BlockParagraph, "b"),
		{Kind: docmodel.BlockTable, Headers: []string{"h"}},
		docmodel.TextBlock(docmodel.BlockParagraph, "c"),
	}
	groups := groupBlocks(blocks)
	if len(groups) != 3 || len(groups[0].blocks) != 2 || groups[1].table == nil || len(groups[2].blocks) != 1 {
		t.Errorf("unexpected grouping %+v", groups)
	}
}
