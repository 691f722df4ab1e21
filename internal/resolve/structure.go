package resolve

import (
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// DefaultAnchorTolerance is how far, in offset units, a table may drift
// from a remembered anchor and still be matched to it. It is a heuristic:
// arbitrary interleaved edits can move a table further.
const DefaultAnchorTolerance = 10

// CellRange describes a located table cell.
type CellRange struct {
	Row    int            `json:"row"`
	Column int            `json:"column"`
	Cell   docmodel.Range `json:"cell"`
	// Content excludes the trailing newline every cell carries.
	Content    docmodel.Range `json:"content"`
	HasContent bool           `json:"has_content"`
	Text       string         `json:"text"`
}

// FindEnclosingParagraph returns the range of the paragraph containing
// offset, descending into table cells. Offsets inside section breaks or
// tables of contents have no paragraph semantics.
func FindEnclosingParagraph(content []*docmodel.StructuralElement, offset int) (docmodel.Range, error) {
	for _, el := range content {
		if !el.Range().Contains(offset) {
			continue
		}
		switch el.Kind() {
		case docmodel.KindParagraph:
			return el.Range(), nil
		case docmodel.KindTable:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					if offset < cell.StartIndex || offset >= cell.EndIndex {
						continue
					}
					return FindEnclosingParagraph(cell.Content, offset)
				}
			}
			return docmodel.Range{}, docerr.New(docerr.KindNotFound, "offset %d is a table boundary", offset)
		default:
			return docmodel.Range{}, docerr.New(docerr.KindNotFound, "offset %d is inside a %s", offset, el.Kind())
		}
	}
	return docmodel.Range{}, docerr.New(docerr.KindNotFound, "no paragraph contains offset %d", offset)
}

// Tables returns every table element depth-first, which is ascending start
// order for well-formed trees.
func Tables(content []*docmodel.StructuralElement) []*docmodel.StructuralElement {
	var out []*docmodel.StructuralElement
	var visit func([]*docmodel.StructuralElement)
	visit = func(content []*docmodel.StructuralElement) {
		for _, el := range content {
			if el.Kind() != docmodel.KindTable {
				continue
			}
			out = append(out, el)
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					visit(cell.Content)
				}
			}
		}
	}
	visit(content)
	return out
}

// FindTable locates the table nearest anchor within ±tolerance, falling back
// to the first table starting at or after anchor.
func FindTable(content []*docmodel.StructuralElement, anchor, tolerance int) (*docmodel.StructuralElement, error) {
	if tolerance < 0 {
		tolerance = 0
	}
	tables := Tables(content)

	var best *docmodel.StructuralElement
	bestDist := tolerance + 1
	for _, t := range tables {
		d := t.StartIndex - anchor
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = t, d
		}
	}
	if best != nil {
		return best, nil
	}
	for _, t := range tables {
		if t.StartIndex >= anchor {
			return t, nil
		}
	}
	return nil, docerr.New(docerr.KindNotFound, "no table near offset %d", anchor)
}

// FindCell locates the table for anchor and returns the cell at (row, col).
func FindCell(content []*docmodel.StructuralElement, anchor, row, col, tolerance int) (CellRange, error) {
	table, err := FindTable(content, anchor, tolerance)
	if err != nil {
		return CellRange{}, err
	}
	return CellAt(table, row, col)
}

// CellAt returns the cell at zero-based (row, col) of a table element.
func CellAt(table *docmodel.StructuralElement, row, col int) (CellRange, error) {
	if table.Kind() != docmodel.KindTable {
		return CellRange{}, docerr.New(docerr.KindNotFound, "element at %d is not a table", table.StartIndex)
	}
	rows := table.Table.TableRows
	if row < 0 || row >= len(rows) {
		return CellRange{}, docerr.New(docerr.KindOutOfBounds, "row %d outside table with %d rows", row, len(rows))
	}
	cells := rows[row].TableCells
	if col < 0 || col >= len(cells) {
		return CellRange{}, docerr.New(docerr.KindOutOfBounds, "column %d outside row with %d cells", col, len(cells))
	}
	return describeCell(cells[col], row, col), nil
}

func describeCell(cell *docmodel.TableCell, row, col int) CellRange {
	cr := CellRange{
		Row:    row,
		Column: col,
		Cell:   docmodel.Range{Start: cell.StartIndex, End: cell.EndIndex},
	}

	if n := len(cell.Content); n > 0 {
		cr.Content = docmodel.Range{Start: cell.Content[0].StartIndex, End: cell.Content[n-1].EndIndex - 1}
	} else {
		cr.Content = docmodel.Range{Start: cell.StartIndex + 1, End: cell.StartIndex + 1}
	}
	if cr.Content.End < cr.Content.Start {
		cr.Content.End = cr.Content.Start
	}

	text := Text(Flatten(cell.Content))
	cr.Text = strings.TrimSuffix(text, "\n")
	cr.HasContent = strings.TrimSpace(text) != ""
	return cr
}
