package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*docmodel.Fragment, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	frag := &docmodel.Fragment{Title: titleFrom(filename)}
	w := &mdWalker{src: src, frag: frag}
	w.blocks(doc)
	return frag, nil
}

type mdWalker struct {
	src  []byte
	frag *docmodel.Fragment
}

func (w *mdWalker) emit(b docmodel.Block) {
	if len(b.Spans) == 0 {
		return
	}
	w.frag.Blocks = append(w.frag.Blocks, b)
}

func (w *mdWalker) blocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			w.emit(docmodel.Block{Kind: docmodel.BlockHeading, Level: node.Level, Spans: w.inline(node)})
		case *ast.Paragraph, *ast.TextBlock:
			w.emit(docmodel.Block{Kind: docmodel.BlockParagraph, Spans: w.inline(node)})
		case *ast.List:
			w.list(node)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
				if strings.TrimSpace(line) == "" {
					continue
				}
				w.emit(docmodel.Block{Kind: docmodel.BlockParagraph, Spans: []docmodel.Span{{Text: line, Code: true}}})
			}
		case *ast.Blockquote:
			w.blocks(node)
		}
	}
}

// list flattens nested lists into consecutive list items.
func (w *mdWalker) list(l *ast.List) {
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.List:
				w.list(c)
			case *ast.Paragraph, *ast.TextBlock:
				w.emit(docmodel.Block{Kind: docmodel.BlockListItem, Ordered: l.IsOrdered(), Spans: w.inline(c)})
			}
		}
	}
}

func (w *mdWalker) inline(n ast.Node) []docmodel.Span {
	var sb spanBuilder
	var visit func(ast.Node, docmodel.Span)
	visit = func(n ast.Node, style docmodel.Span) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				s := style
				s.Text = string(node.Segment.Value(w.src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					s.Text += " "
				}
				sb.add(s)
			case *ast.String:
				s := style
				s.Text = string(node.Value)
				sb.add(s)
			case *ast.CodeSpan:
				s := style
				s.Code = true
				visit(node, s)
			case *ast.Emphasis:
				s := style
				if node.Level >= 2 {
					s.Bold = true
				} else {
					s.Italic = true
				}
				visit(node, s)
			case *ast.Link:
				s := style
				s.Link = string(node.Destination)
				visit(node, s)
			case *ast.AutoLink:
				s := style
				s.Link = string(node.URL(w.src))
				s.Text = string(node.Label(w.src))
				sb.add(s)
			case *ast.Image:
				visit(node, style)
			}
		}
	}
	visit(n, docmodel.Span{})
	return sb.done()
}
