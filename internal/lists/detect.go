// Package lists classifies paragraphs that start with a typed list marker
// ("- ", "1. ", "a) ") so they can be converted into real bulleted lists.
package lists

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// Style is the list style a marker maps to.
type Style int

const (
	StyleNone Style = iota
	StyleDisc
	StyleDecimal
	StyleAlpha
)

func (s Style) String() string {
	switch s {
	case StyleDisc:
		return "disc"
	case StyleDecimal:
		return "decimal"
	case StyleAlpha:
		return "alpha"
	default:
		return "none"
	}
}

// Preset returns the remote bullet preset for the style.
func (s Style) Preset() string {
	switch s {
	case StyleDecimal:
		return "NUMBERED_DECIMAL_ALPHA_ROMAN"
	case StyleAlpha:
		return "NUMBERED_UPPERALPHA_ALPHA_ROMAN"
	default:
		return "BULLET_DISC_CIRCLE_SQUARE"
	}
}

// ParseStyle accepts the String form of a style.
func ParseStyle(s string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disc", "bullet", "":
		return StyleDisc, true
	case "decimal", "numbered", "number":
		return StyleDecimal, true
	case "alpha", "alphabetic", "letter":
		return StyleAlpha, true
	}
	return StyleNone, false
}

// Marker whitespace never includes the paragraph's own newline.
var markers = []struct {
	re    *regexp.Regexp
	style Style
}{
	{regexp.MustCompile(`^[-*•][^\S\n]+`), StyleDisc},
	{regexp.MustCompile(`^\d+[.)][^\S\n]+`), StyleDecimal},
	{regexp.MustCompile(`^[a-zA-Z][.)][^\S\n]+`), StyleAlpha},
}

// Match is a paragraph whose text starts with a list marker.
type Match struct {
	Paragraph docmodel.Range `json:"paragraph"`
	// TextStart is the offset of the first text run, which follows any
	// inline objects opening the paragraph.
	TextStart int `json:"text_start"`
	// Leading is the whitespace before the marker, in offset units.
	Leading int `json:"leading"`
	// MarkerLength includes the marker's trailing whitespace.
	MarkerLength int   `json:"marker_length"`
	Style        Style `json:"style"`
	Bulleted     bool  `json:"bulleted"`
}

// Marker returns the offset range covering leading whitespace and marker.
func (m Match) Marker() docmodel.Range {
	return docmodel.Range{Start: m.TextStart, End: m.TextStart + m.Leading + m.MarkerLength}
}

// leadingText returns the text of the contiguous runs that open a
// paragraph, skipping inline objects before the first run and stopping at
// the first element that is not text. ok is false when the paragraph holds
// no text run.
func leadingText(p *docmodel.Paragraph) (text string, start int, ok bool) {
	var sb strings.Builder
	for _, el := range p.Elements {
		if el.TextRun == nil {
			if ok {
				break
			}
			continue
		}
		if !ok {
			start, ok = el.StartIndex, true
		}
		sb.WriteString(el.TextRun.Content)
	}
	return sb.String(), start, ok
}

// Classify inspects paragraph text and reports the marker style, the
// leading whitespace length and the marker length, both in UTF-16 units.
// The first matching grammar wins.
func Classify(text string) (style Style, leading, markerLength int, ok bool) {
	trimmed := strings.TrimLeftFunc(text, func(r rune) bool {
		return r != '\n' && unicode.IsSpace(r)
	})
	for _, m := range markers {
		if loc := m.re.FindStringIndex(trimmed); loc != nil {
			lead := docmodel.Len16(text[:len(text)-len(trimmed)])
			return m.style, lead, docmodel.Len16(trimmed[:loc[1]]), true
		}
	}
	return StyleNone, 0, 0, false
}

// Detect returns a match for every marker paragraph, in document order,
// including paragraphs inside table cells. When filter is non-nil only
// paragraphs overlapping it are considered.
func Detect(content []*docmodel.StructuralElement, filter *docmodel.Range) []Match {
	var out []Match
	var visit func([]*docmodel.StructuralElement)
	visit = func(content []*docmodel.StructuralElement) {
		for _, el := range content {
			switch el.Kind() {
			case docmodel.KindParagraph:
				if filter != nil && !el.Range().Overlaps(*filter) {
					continue
				}
				text, start, ok := leadingText(el.Paragraph)
				if !ok {
					continue
				}
				style, lead, n, ok := Classify(text)
				if !ok {
					continue
				}
				out = append(out, Match{
					Paragraph:    el.Range(),
					TextStart:    start,
					Leading:      lead,
					MarkerLength: n,
					Style:        style,
					Bulleted:     el.Paragraph.Bullet != nil,
				})
			case docmodel.KindTable:
				for _, row := range el.Table.TableRows {
					for _, cell := range row.TableCells {
						visit(cell.Content)
					}
				}
			}
		}
	}
	visit(content)
	return out
}
