// Package resolve maps logical queries (text occurrences, offsets, table
// cells) against a fetched content tree to the offset ranges the remote
// service addresses. Everything here is a pure function of the tree.
package resolve

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// Segment is a contiguous run of literal text with its absolute offsets.
type Segment struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Flatten walks content depth-first and returns one segment per text run,
// ordered by start offset. Table cells are visited row-major. Offsets are
// taken from the tree as-is.
func Flatten(content []*docmodel.StructuralElement) []Segment {
	var segs []Segment
	walk(content, &segs)
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].Start < segs[j].Start
	})
	return segs
}

func walk(content []*docmodel.StructuralElement, segs *[]Segment) {
	for _, el := range content {
		switch el.Kind() {
		case docmodel.KindParagraph:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun == nil || pe.TextRun.Content == "" {
					continue
				}
				// Runs absent from the payload decode with zero offsets.
				if pe.EndIndex <= pe.StartIndex {
					continue
				}
				*segs = append(*segs, Segment{
					Text:  pe.TextRun.Content,
					Start: pe.StartIndex,
					End:   pe.EndIndex,
				})
			}
		case docmodel.KindTable:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					walk(cell.Content, segs)
				}
			}
		case docmodel.KindTableOfContents:
			walk(el.TableOfContents.Content, segs)
		}
	}
}

// Text reconstructs the linear text of the segments.
func Text(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// TextIn returns the text covered by r. Offsets inside structural gaps
// contribute nothing.
func TextIn(segs []Segment, r docmodel.Range) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.End <= r.Start || s.Start >= r.End {
			continue
		}
		from := 0
		if r.Start > s.Start {
			from = byteOffset16(s.Text, r.Start-s.Start)
		}
		to := len(s.Text)
		if r.End < s.End {
			to = byteOffset16(s.Text, r.End-s.Start)
		}
		if from < to {
			sb.WriteString(s.Text[from:to])
		}
	}
	return sb.String()
}

// byteOffset16 converts a UTF-16 unit count into a byte index of s.
func byteOffset16(s string, units int) int {
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return len(s)
}

// runeWidth returns the byte width of the rune starting at s[i].
func runeWidth(s string, i int) int {
	_, w := utf8.DecodeRuneInString(s[i:])
	if w == 0 {
		return 1
	}
	return w
}
