// Package docmodel holds the structural snapshot of a remote document as the
// Docs REST API returns it, plus the offset types exchanged with it.
//
// All offsets are absolute UTF-16 code unit positions, half-open.
package docmodel

import "strings"

// Document is the root of a fetched document.
type Document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title,omitempty"`
	RevisionID string `json:"revisionId,omitempty"`
	Body       *Body  `json:"body,omitempty"`
	Tabs       []*Tab `json:"tabs,omitempty"`
}

// Body is a content list container.
type Body struct {
	Content []*StructuralElement `json:"content"`
}

// Tab is a document tab; tabs nest through ChildTabs.
type Tab struct {
	TabProperties *TabProperties `json:"tabProperties,omitempty"`
	ChildTabs     []*Tab         `json:"childTabs,omitempty"`
	DocumentTab   *DocumentTab   `json:"documentTab,omitempty"`
}

type TabProperties struct {
	TabID string `json:"tabId"`
	Title string `json:"title,omitempty"`
	Index int    `json:"index,omitempty"`
}

type DocumentTab struct {
	Body *Body `json:"body,omitempty"`
}

// ElementKind tags the variant held by a StructuralElement.
type ElementKind int

const (
	KindUnknown ElementKind = iota
	KindParagraph
	KindTable
	KindSectionBreak
	KindTableOfContents
)

func (k ElementKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindSectionBreak:
		return "section_break"
	case KindTableOfContents:
		return "table_of_contents"
	default:
		return "unknown"
	}
}

// StructuralElement is one node of a content list. Exactly one of the
// variant pointers is set.
type StructuralElement struct {
	StartIndex      int              `json:"startIndex,omitempty"`
	EndIndex        int              `json:"endIndex"`
	Paragraph       *Paragraph       `json:"paragraph,omitempty"`
	Table           *Table           `json:"table,omitempty"`
	SectionBreak    *SectionBreak    `json:"sectionBreak,omitempty"`
	TableOfContents *TableOfContents `json:"tableOfContents,omitempty"`
}

// Kind returns the variant tag.
func (e *StructuralElement) Kind() ElementKind {
	switch {
	case e == nil:
		return KindUnknown
	case e.Paragraph != nil:
		return KindParagraph
	case e.Table != nil:
		return KindTable
	case e.SectionBreak != nil:
		return KindSectionBreak
	case e.TableOfContents != nil:
		return KindTableOfContents
	}
	return KindUnknown
}

// Range returns the element's offset range.
func (e *StructuralElement) Range() Range {
	return Range{Start: e.StartIndex, End: e.EndIndex}
}

type Paragraph struct {
	Elements       []*ParagraphElement `json:"elements"`
	ParagraphStyle *ParagraphStyle     `json:"paragraphStyle,omitempty"`
	Bullet         *Bullet             `json:"bullet,omitempty"`
}

// Text concatenates the paragraph's text runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, el := range p.Elements {
		if el.TextRun != nil {
			sb.WriteString(el.TextRun.Content)
		}
	}
	return sb.String()
}

// ParagraphElement is an inline item. Only TextRun carries text; the other
// variants still consume offsets.
type ParagraphElement struct {
	StartIndex          int                  `json:"startIndex,omitempty"`
	EndIndex            int                  `json:"endIndex"`
	TextRun             *TextRun             `json:"textRun,omitempty"`
	InlineObjectElement *InlineObjectElement `json:"inlineObjectElement,omitempty"`
	PageBreak           *PageBreak           `json:"pageBreak,omitempty"`
	HorizontalRule      *HorizontalRule      `json:"horizontalRule,omitempty"`
}

type TextRun struct {
	Content   string     `json:"content"`
	TextStyle *TextStyle `json:"textStyle,omitempty"`
}

type InlineObjectElement struct {
	InlineObjectID string `json:"inlineObjectId"`
}

type PageBreak struct{}

type HorizontalRule struct{}

type SectionBreak struct{}

type TableOfContents struct {
	Content []*StructuralElement `json:"content"`
}

type Table struct {
	Rows      int         `json:"rows"`
	Columns   int         `json:"columns"`
	TableRows []*TableRow `json:"tableRows"`
}

type TableRow struct {
	StartIndex int          `json:"startIndex"`
	EndIndex   int          `json:"endIndex"`
	TableCells []*TableCell `json:"tableCells"`
}

// TableCell is itself a content list container.
type TableCell struct {
	StartIndex int                  `json:"startIndex"`
	EndIndex   int                  `json:"endIndex"`
	Content    []*StructuralElement `json:"content"`
}

type Bullet struct {
	ListID       string `json:"listId"`
	NestingLevel int    `json:"nestingLevel,omitempty"`
}

// TextStyle is used both when reading runs and when writing style updates.
type TextStyle struct {
	Bold               *bool               `json:"bold,omitempty"`
	Italic             *bool               `json:"italic,omitempty"`
	Underline          *bool               `json:"underline,omitempty"`
	Strikethrough      *bool               `json:"strikethrough,omitempty"`
	FontSize           *Dimension          `json:"fontSize,omitempty"`
	WeightedFontFamily *WeightedFontFamily `json:"weightedFontFamily,omitempty"`
	ForegroundColor    *OptionalColor      `json:"foregroundColor,omitempty"`
	BackgroundColor    *OptionalColor      `json:"backgroundColor,omitempty"`
	Link               *Link               `json:"link,omitempty"`
}

type ParagraphStyle struct {
	NamedStyleType string     `json:"namedStyleType,omitempty"`
	Alignment      string     `json:"alignment,omitempty"`
	LineSpacing    *float64   `json:"lineSpacing,omitempty"`
	SpaceAbove     *Dimension `json:"spaceAbove,omitempty"`
	SpaceBelow     *Dimension `json:"spaceBelow,omitempty"`
	IndentStart    *Dimension `json:"indentStart,omitempty"`
	IndentEnd      *Dimension `json:"indentEnd,omitempty"`
	KeepWithNext   *bool      `json:"keepWithNext,omitempty"`
}

type Dimension struct {
	Magnitude float64 `json:"magnitude"`
	Unit      string  `json:"unit"`
}

// Points returns a dimension in PT.
func Points(v float64) *Dimension {
	return &Dimension{Magnitude: v, Unit: "PT"}
}

type WeightedFontFamily struct {
	FontFamily string `json:"fontFamily"`
	Weight     int    `json:"weight,omitempty"`
}

type OptionalColor struct {
	Color *Color `json:"color,omitempty"`
}

type Color struct {
	RGBColor *RGBColor `json:"rgbColor,omitempty"`
}

type RGBColor struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

type Link struct {
	URL string `json:"url,omitempty"`
}

// Content returns the content list for tabID. An empty tabID selects the
// first tab, or the legacy body for documents fetched without tabs.
func (d *Document) Content(tabID string) ([]*StructuralElement, bool) {
	if tabID == "" {
		if len(d.Tabs) > 0 {
			return d.Tabs[0].content(), true
		}
		if d.Body != nil {
			return d.Body.Content, true
		}
		return nil, true
	}
	if t := findTab(d.Tabs, tabID); t != nil {
		return t.content(), true
	}
	return nil, false
}

func (t *Tab) content() []*StructuralElement {
	if t.DocumentTab == nil || t.DocumentTab.Body == nil {
		return nil
	}
	return t.DocumentTab.Body.Content
}

func findTab(tabs []*Tab, id string) *Tab {
	for _, t := range tabs {
		if t.TabProperties != nil && t.TabProperties.TabID == id {
			return t
		}
		if found := findTab(t.ChildTabs, id); found != nil {
			return found
		}
	}
	return nil
}

// EndOfContent returns the offset just before the final newline of the
// content list, the last position text can be inserted at.
func EndOfContent(content []*StructuralElement) int {
	if len(content) == 0 {
		return 1
	}
	end := content[len(content)-1].EndIndex - 1
	if end < 1 {
		end = 1
	}
	return end
}
