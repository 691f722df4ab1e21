// Package docbuild assembles documents with the offset layout the remote
// service produces: a leading section break, paragraphs terminated by a
// newline, and tables whose rows and cells each consume one marker offset.
package docbuild

import (
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// Builder appends elements at increasing offsets.
type Builder struct {
	id      string
	pos     int
	content []*docmodel.StructuralElement
}

func New(documentID string) *Builder {
	return &Builder{
		id:  documentID,
		pos: 1,
		content: []*docmodel.StructuralElement{
			{StartIndex: 0, EndIndex: 1, SectionBreak: &docmodel.SectionBreak{}},
		},
	}
}

// Pos returns the next free offset.
func (b *Builder) Pos() int { return b.pos }

// Paragraph appends a paragraph made of one run per argument. A trailing
// newline is added to the last run when missing.
func (b *Builder) Paragraph(runs ...string) *docmodel.StructuralElement {
	el := paragraph(b.pos, runs)
	b.pos = el.EndIndex
	b.content = append(b.content, el)
	return el
}

// Table appends a table with one paragraph per cell.
func (b *Builder) Table(cells [][]string) *docmodel.StructuralElement {
	el := table(b.pos, cells)
	b.pos = el.EndIndex
	b.content = append(b.content, el)
	return el
}

// Append adds a prebuilt element and advances past it.
func (b *Builder) Append(el *docmodel.StructuralElement) {
	b.pos = el.EndIndex
	b.content = append(b.content, el)
}

// Content returns the built content list.
func (b *Builder) Content() []*docmodel.StructuralElement {
	return b.content
}

// Document wraps the content into a single-tab document.
func (b *Builder) Document() *docmodel.Document {
	return &docmodel.Document{
		DocumentID: b.id,
		Title:      b.id,
		Tabs: []*docmodel.Tab{{
			TabProperties: &docmodel.TabProperties{TabID: "t.0"},
			DocumentTab:   &docmodel.DocumentTab{Body: &docmodel.Body{Content: b.content}},
		}},
	}
}

func paragraph(start int, runs []string) *docmodel.StructuralElement {
	if len(runs) == 0 {
		runs = []string{"\n"}
	}
	if last := runs[len(runs)-1]; !strings.HasSuffix(last, "\n") {
		runs = append(append([]string(nil), runs[:len(runs)-1]...), last+"\n")
	}
	el := &docmodel.StructuralElement{StartIndex: start, Paragraph: &docmodel.Paragraph{}}
	pos := start
	for _, r := range runs {
		n := docmodel.Len16(r)
		el.Paragraph.Elements = append(el.Paragraph.Elements, &docmodel.ParagraphElement{
			StartIndex: pos,
			EndIndex:   pos + n,
			TextRun:    &docmodel.TextRun{Content: r},
		})
		pos += n
	}
	el.EndIndex = pos
	return el
}

func table(start int, cells [][]string) *docmodel.StructuralElement {
	cols := 0
	for _, row := range cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	t := &docmodel.Table{Rows: len(cells), Columns: cols}
	pos := start + 1
	for _, row := range cells {
		tr := &docmodel.TableRow{StartIndex: pos}
		pos++
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			tc := &docmodel.TableCell{StartIndex: pos}
			p := paragraph(pos+1, []string{text})
			tc.Content = []*docmodel.StructuralElement{p}
			tc.EndIndex = p.EndIndex
			pos = p.EndIndex
			tr.TableCells = append(tr.TableCells, tc)
		}
		tr.EndIndex = pos
		t.TableRows = append(t.TableRows, tr)
	}
	return &docmodel.StructuralElement{StartIndex: start, EndIndex: pos + 1, Table: t}
}
