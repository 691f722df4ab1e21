package docmodel

import "strings"

// BlockKind tags an import block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockTable
)

// Fragment is parsed content ready to be written into a document.
type Fragment struct {
	Title  string
	Blocks []Block
}

// Block is one paragraph-level unit of imported content.
type Block struct {
	Kind    BlockKind
	Level   int  // heading level 1-6
	Ordered bool // numbered list item
	Spans   []Span

	// Table blocks only.
	Headers []string
	Rows    [][]string
}

// Span is an inline run with uniform formatting.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Link   string
}

// Plain reports whether the span carries no formatting.
func (s Span) Plain() bool {
	return !s.Bold && !s.Italic && !s.Code && s.Link == ""
}

// Text concatenates the block's spans.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// TextBlock builds a paragraph-like block from plain text.
func TextBlock(kind BlockKind, text string) Block {
	return Block{Kind: kind, Spans: []Span{{Text: text}}}
}
