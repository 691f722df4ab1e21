package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel/docbuild"
	"github.com/EastAgile/google-docs-mcp/internal/lists"
	"github.com/EastAgile/google-docs-mcp/internal/mutation"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline"
	"github.com/EastAgile/google-docs-mcp/internal/pipeline/pipelinetest"
)

var sel = docmodel.Selector{DocumentID: "doc-1"}

func newEngine(docs ...*docmodel.Document) (*Engine, *pipelinetest.Remote) {
	remote := pipelinetest.New(docs...)
	coord := pipeline.NewCoordinator(remote, nil, time.Hour, nil)
	return New(coord, Options{}), remote
}

func rangeOf(r *mutation.Request) docmodel.Range { return r.Target() }

func TestLocateText_SecondOccurrence(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Hello world. Hello again.")
	e, _ := newEngine(b.Document())

	r, err := e.LocateText(context.Background(), sel, "Hello", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (docmodel.Range{Start: 14, End: 19}) {
		t.Errorf("expected [14,19), got %v", r)
	}
}

func TestLocateText_NotFoundCarriesHint(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Quarterly revenue summary")
	e, _ := newEngine(b.Document())

	_, err := e.LocateText(context.Background(), sel, "Quarterly revenue sumary", 1)
	if !errors.Is(err, docerr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var se *SuggestError
	if !errors.As(err, &se) {
		t.Fatalf("expected a suggestion, got %v", err)
	}
	if se.Suggestion != "Quarterly revenue summary" {
		t.Errorf("unexpected suggestion %q", se.Suggestion)
	}
}

func TestLocateCell_ToleratesDrift(t *testing.T) {
	b := docbuild.New("doc-1")
	for b.Pos() < 50 {
		b.Paragraph("")
	}
	b.Table([][]string{{"a", "b", "c"}, {"d", "e", "f"}})
	e, _ := newEngine(b.Document())

	cell, err := e.LocateCell(context.Background(), sel, 48, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cell.Row != 1 || cell.Column != 2 || cell.Text != "f" {
		t.Errorf("unexpected cell %+v", cell)
	}
	if _, err := e.LocateCell(context.Background(), sel, 50, 5, 0); !errors.Is(err, docerr.ErrOutOfBounds) {
		t.Errorf("expected out of bounds, got %v", err)
	}
}

func listDoc(bulleted bool) *docmodel.Document {
	b := docbuild.New("doc-1")
	first := b.Paragraph("1. First item")
	second := b.Paragraph("2. Second")
	b.Paragraph("Not a list")
	if bulleted {
		first.Paragraph.Bullet = &docmodel.Bullet{ListID: "l1"}
		second.Paragraph.Bullet = &docmodel.Bullet{ListID: "l1"}
	}
	return b.Document()
}

func TestConvertMarkedParagraphsToLists_TwoPhases(t *testing.T) {
	e, remote := newEngine(listDoc(false), listDoc(true))

	n, err := e.ConvertMarkedParagraphsToLists(context.Background(), sel, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 converted, got %d", n)
	}
	if remote.Fetches != 2 || len(remote.Batches) != 2 {
		t.Fatalf("expected 2 fetches and 2 batches, got %d and %d", remote.Fetches, len(remote.Batches))
	}

	bullets := remote.Batches[0]
	if len(bullets) != 2 {
		t.Fatalf("expected 2 bullet requests, got %d", len(bullets))
	}
	for _, r := range bullets {
		if r.Kind() != mutation.KindCreateBullets || r.CreateParagraphBullets.BulletPreset != lists.StyleDecimal.Preset() {
			t.Errorf("unexpected bullet request %+v", r)
		}
	}

	deletes := remote.Batches[1]
	want := []docmodel.Range{{Start: 15, End: 18}, {Start: 1, End: 4}}
	if len(deletes) != len(want) {
		t.Fatalf("expected %d deletes, got %d", len(want), len(deletes))
	}
	for i, w := range want {
		if deletes[i].Kind() != mutation.KindDeleteRange || rangeOf(deletes[i]) != w {
			t.Errorf("delete %d: expected %v, got %v", i, w, rangeOf(deletes[i]))
		}
	}
}

func TestConvertMarkedParagraphsToLists_OnlyBulletedLoseMarkers(t *testing.T) {
	after := listDoc(false)
	content, _ := after.Content("")
	content[1].Paragraph.Bullet = &docmodel.Bullet{ListID: "l1"}
	e, remote := newEngine(listDoc(false), after)

	n, err := e.ConvertMarkedParagraphsToLists(context.Background(), sel, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(remote.Batches[1]) != 1 || rangeOf(remote.Batches[1][0]) != (docmodel.Range{Start: 1, End: 4}) {
		t.Errorf("expected only the first marker deleted, got n=%d batch=%v", n, remote.Batches[1])
	}
}

func TestConvertMarkedParagraphsToLists_KeepsExistingBullets(t *testing.T) {
	before := listDoc(false)
	content, _ := before.Content("")
	content[1].Paragraph.Bullet = &docmodel.Bullet{ListID: "l0"}
	e, remote := newEngine(before, listDoc(true))

	n, err := e.ConvertMarkedParagraphsToLists(context.Background(), sel, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 converted, got %d", n)
	}
	if len(remote.Batches) != 2 || len(remote.Batches[0]) != 1 {
		t.Fatalf("expected one bullet request then deletes, got %v", remote.Batches)
	}
	if got := rangeOf(remote.Batches[0][0]); got.Start != 15 {
		t.Errorf("expected bullets only for the paragraph at 15, got %v", got)
	}
}

func TestConvertMarkedParagraphsToLists_AllBulletedSkipsBulletBatch(t *testing.T) {
	e, remote := newEngine(listDoc(true))

	n, err := e.ConvertMarkedParagraphsToLists(context.Background(), sel, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || remote.Fetches != 1 || len(remote.Batches) != 1 {
		t.Fatalf("expected 2 markers deleted in one batch after one fetch, got n=%d fetches=%d batches=%d", n, remote.Fetches, len(remote.Batches))
	}
	for _, r := range remote.Batches[0] {
		if r.Kind() != mutation.KindDeleteRange {
			t.Errorf("expected only deletes, got %v", r.Kind())
		}
	}
}

func TestConvertMarkedParagraphsToLists_NoMatchesNoWrites(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Not a list")
	e, remote := newEngine(b.Document())

	n, err := e.ConvertMarkedParagraphsToLists(context.Background(), sel, nil)
	if err != nil || n != 0 {
		t.Fatalf("expected 0 and no error, got %d, %v", n, err)
	}
	if len(remote.Batches) != 0 {
		t.Errorf("expected no batches, got %d", len(remote.Batches))
	}
}

func TestApplyBulletList_RequiresStyle(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	err := e.ApplyBulletList(context.Background(), sel, docmodel.Range{Start: 1, End: 5}, lists.StyleNone)
	if !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
	if remote.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", remote.Calls())
	}
}

func TestRemoveBulletList(t *testing.T) {
	e, remote := newEngine(listDoc(true))
	if err := e.RemoveBulletList(context.Background(), sel, docmodel.Range{Start: 1, End: 25}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote.Batches) != 1 || remote.Batches[0][0].Kind() != mutation.KindRemoveBullets {
		t.Errorf("unexpected batches %v", remote.Batches)
	}
}

func TestPopulateTable_EmptyHeadersMakesNoCalls(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	_, err := e.PopulateTable(context.Background(), sel, TableSpec{Offset: 1})
	if !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
	if remote.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", remote.Calls())
	}
}

// tableStages returns the tree before insertion, after the empty table is
// created, and after it is filled.
func tableStages(values [][]string) []*docmodel.Document {
	before := docbuild.New("doc-1")
	before.Paragraph("Intro")
	before.Paragraph("")

	stage := func(cells [][]string) *docmodel.Document {
		b := docbuild.New("doc-1")
		b.Paragraph("Intro")
		b.Paragraph("")
		b.Table(cells)
		b.Paragraph("")
		return b.Document()
	}
	empty := make([][]string, len(values))
	for i, row := range values {
		empty[i] = make([]string, len(row))
	}
	return []*docmodel.Document{before.Document(), stage(empty), stage(values)}
}

func TestPopulateTable_FourPhases(t *testing.T) {
	e, remote := newEngine(tableStages([][]string{{"A", "B"}, {"x", "y"}})...)

	res, err := e.PopulateTable(context.Background(), sel, TableSpec{
		Offset:       7,
		Headers:      []string{"A", "B"},
		Rows:         [][]string{{"x", "y"}},
		BoldHeaders:  true,
		BoldTotalRow: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TableAnchorOffset != 8 || res.Rows != 2 || res.Columns != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if remote.Fetches != 3 || len(remote.Batches) != 3 {
		t.Fatalf("expected 3 fetches and 3 batches, got %d and %d", remote.Fetches, len(remote.Batches))
	}

	create := remote.Batches[0]
	if len(create) != 1 || create[0].InsertTable == nil || create[0].InsertTable.Rows != 2 || create[0].InsertTable.Columns != 2 {
		t.Errorf("unexpected create batch %+v", create)
	}

	fill := remote.Batches[1]
	wantAt := []int{18, 16, 13, 11}
	wantText := []string{"y", "x", "B", "A"}
	if len(fill) != len(wantAt) {
		t.Fatalf("expected %d inserts, got %d", len(wantAt), len(fill))
	}
	for i := range wantAt {
		if fill[i].InsertText == nil || fill[i].InsertText.Location.Index != wantAt[i] || fill[i].InsertText.Text != wantText[i] {
			t.Errorf("insert %d: expected %q at %d, got %+v", i, wantText[i], wantAt[i], fill[i].InsertText)
		}
	}

	style := remote.Batches[2]
	wantBold := []docmodel.Range{{Start: 11, End: 12}, {Start: 14, End: 15}, {Start: 18, End: 19}, {Start: 21, End: 22}}
	if len(style) != len(wantBold) {
		t.Fatalf("expected %d style requests, got %d", len(wantBold), len(style))
	}
	for i, w := range wantBold {
		if style[i].Kind() != mutation.KindTextStyle || rangeOf(style[i]) != w {
			t.Errorf("style %d: expected %v, got %v", i, w, rangeOf(style[i]))
		}
	}
}

func TestPopulateTable_NoStylesSkipsLastBatch(t *testing.T) {
	e, remote := newEngine(tableStages([][]string{{"A", "B"}})...)
	if _, err := e.PopulateTable(context.Background(), sel, TableSpec{Offset: 7, Headers: []string{"A", "B"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote.Batches) != 2 {
		t.Errorf("expected the style batch to be elided, got %d batches", len(remote.Batches))
	}
}

func cellDoc(value string) *docmodel.Document {
	b := docbuild.New("doc-1")
	b.Table([][]string{{"a", "b"}, {"c", value}})
	b.Paragraph("")
	return b.Document()
}

func TestEditCell_ReplaceThenStyle(t *testing.T) {
	e, remote := newEngine(cellDoc("d"), cellDoc("new"))
	text, bold := "new", true

	err := e.EditCell(context.Background(), sel, CellEdit{
		Anchor: 1, Row: 1, Column: 1,
		Text:      &text,
		TextStyle: &mutation.TextStyleOptions{Bold: &bold},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.Fetches != 2 || len(remote.Batches) != 2 {
		t.Fatalf("expected 2 fetches and 2 batches, got %d and %d", remote.Fetches, len(remote.Batches))
	}
	rewrite := remote.Batches[0]
	if len(rewrite) != 2 || rewrite[0].Kind() != mutation.KindDeleteRange || rewrite[1].Kind() != mutation.KindInsertText {
		t.Fatalf("expected delete then insert, got %v", rewrite)
	}
	if rangeOf(rewrite[0]) != (docmodel.Range{Start: 14, End: 15}) || rewrite[1].InsertText.Location.Index != 14 {
		t.Errorf("unexpected rewrite ranges %v / %v", rangeOf(rewrite[0]), rangeOf(rewrite[1]))
	}
	if got := rangeOf(remote.Batches[1][0]); got != (docmodel.Range{Start: 14, End: 17}) {
		t.Errorf("expected style over the new text [14,17), got %v", got)
	}
}

func TestEditCell_StyleOnlyUsesOneSnapshot(t *testing.T) {
	e, remote := newEngine(cellDoc("d"))
	italic := true
	err := e.EditCell(context.Background(), sel, CellEdit{Anchor: 1, Row: 0, Column: 0, TextStyle: &mutation.TextStyleOptions{Italic: &italic}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.Fetches != 1 || len(remote.Batches) != 1 {
		t.Errorf("expected 1 fetch and 1 batch, got %d and %d", remote.Fetches, len(remote.Batches))
	}
}

func TestEditCell_NothingToChange(t *testing.T) {
	e, remote := newEngine(cellDoc("d"))
	err := e.EditCell(context.Background(), sel, CellEdit{Anchor: 1, TextStyle: &mutation.TextStyleOptions{}})
	if !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
	if remote.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", remote.Calls())
	}
}

func TestInsertText_OutOfBounds(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Short")
	e, remote := newEngine(b.Document())

	if err := e.InsertText(context.Background(), sel, 40, "x"); !errors.Is(err, docerr.ErrOutOfBounds) {
		t.Errorf("expected out of bounds, got %v", err)
	}
	if len(remote.Batches) != 0 {
		t.Errorf("expected no batches, got %d", len(remote.Batches))
	}
}

func TestAppendText_InsertsBeforeFinalNewline(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Short")
	e, remote := newEngine(b.Document())

	at, err := e.AppendText(context.Background(), sel, " tail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if at != 6 || remote.Batches[0][0].InsertText.Location.Index != 6 {
		t.Errorf("expected insertion at 6, got %d", at)
	}
}

func TestFormatText_ByText(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Hello world. Hello again.")
	e, remote := newEngine(b.Document())
	under := true

	r, err := e.FormatText(context.Background(), sel, TextTarget{Text: "again"}, mutation.TextStyleOptions{Underline: &under})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (docmodel.Range{Start: 20, End: 25}) || rangeOf(remote.Batches[0][0]) != r {
		t.Errorf("unexpected styled range %v", r)
	}
}

func TestFormatText_NoFieldsMakesNoCalls(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	_, err := e.FormatText(context.Background(), sel, TextTarget{Text: "First"}, mutation.TextStyleOptions{})
	if !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
	if remote.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", remote.Calls())
	}
}

func TestFormatParagraph_ByOffset(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	offset := 17
	center := "center"
	r, err := e.FormatParagraph(context.Background(), sel, ParagraphTarget{Offset: &offset}, mutation.ParagraphStyleOptions{Alignment: &center})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (docmodel.Range{Start: 15, End: 25}) || remote.Batches[0][0].UpdateParagraphStyle.ParagraphStyle.Alignment != "CENTER" {
		t.Errorf("unexpected paragraph range %v", r)
	}
}

func TestInsertImage_ReturnsObjectID(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	remote.Replies = map[int][]mutation.Reply{0: {{InsertInlineImage: &struct {
		ObjectID string `json:"objectId"`
	}{ObjectID: "kix.img"}}}}

	id, err := e.InsertImage(context.Background(), sel, 1, "https://example.com/a.png", 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "kix.img" {
		t.Errorf("expected kix.img, got %q", id)
	}
}

func TestInsertImage_BadURLMakesNoCalls(t *testing.T) {
	e, remote := newEngine(listDoc(false))
	if _, err := e.InsertImage(context.Background(), sel, 1, "file:///etc/passwd", 0, 0); !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
	if remote.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", remote.Calls())
	}
}

func TestUnimplementedFailLoudly(t *testing.T) {
	e, _ := newEngine(listDoc(false))
	if _, err := e.FindParagraphsByStyle(context.Background(), sel, "HEADING_1"); !errors.Is(err, docerr.ErrUnimplemented) {
		t.Errorf("expected unimplemented, got %v", err)
	}
	if err := e.AddComment(context.Background(), sel, TextTarget{Text: "x"}, "note"); !errors.Is(err, docerr.ErrUnimplemented) {
		t.Errorf("expected unimplemented, got %v", err)
	}
}

func TestErrorsCarryDocumentContext(t *testing.T) {
	e, _ := newEngine(listDoc(false))
	_, err := e.LocateParagraph(context.Background(), sel, 0)
	var de *docerr.Error
	if !errors.As(err, &de) || de.DocumentID != "doc-1" {
		t.Errorf("expected document context on error, got %v", err)
	}
}

func TestInsertTable_SingleRequest(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Short")
	e, remote := newEngine(b.Document())

	if err := e.InsertTable(context.Background(), sel, 3, 2, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote.Batches) != 1 || len(remote.Batches[0]) != 1 {
		t.Fatalf("expected one request, got %v", remote.Batches)
	}
	req := remote.Batches[0][0]
	if req.Kind() != mutation.KindInsertTable || req.InsertTable.Rows != 2 || req.InsertTable.Columns != 4 {
		t.Errorf("unexpected request %+v", req.InsertTable)
	}

	if err := e.InsertTable(context.Background(), sel, 3, 0, 4); !errors.Is(err, docerr.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}
}

func TestInsertPageBreak_AtOffset(t *testing.T) {
	b := docbuild.New("doc-1")
	b.Paragraph("Short")
	e, remote := newEngine(b.Document())

	if err := e.InsertPageBreak(context.Background(), sel, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := remote.Batches[0][0]
	if req.Kind() != mutation.KindInsertPageBreak || req.Target().Start != 4 {
		t.Errorf("expected page break at 4, got %v at %v", req.Kind(), req.Target())
	}
}
