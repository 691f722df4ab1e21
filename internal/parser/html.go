package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*docmodel.Fragment, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	frag := &docmodel.Fragment{Title: titleFrom(filename)}
	if title := findTitle(doc); title != "" {
		frag.Title = title
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	w := &htmlWalker{frag: frag}
	w.blocks(root)
	w.flushLoose()
	return frag, nil
}

type htmlWalker struct {
	frag  *docmodel.Fragment
	loose spanBuilder
}

func (w *htmlWalker) emit(b docmodel.Block) {
	if b.Kind != docmodel.BlockTable && len(b.Spans) == 0 {
		return
	}
	w.frag.Blocks = append(w.frag.Blocks, b)
}

// flushLoose turns inline content found directly inside containers into a
// paragraph.
func (w *htmlWalker) flushLoose() {
	w.emit(docmodel.Block{Kind: docmodel.BlockParagraph, Spans: w.loose.done()})
}

func (w *htmlWalker) blocks(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			w.loose.add(docmodel.Span{Text: c.Data})
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		if level := headingLevel(c.Data); level > 0 {
			w.flushLoose()
			w.emit(docmodel.Block{Kind: docmodel.BlockHeading, Level: level, Spans: inlineSpans(c)})
			continue
		}
		switch c.Data {
		case "script", "style", "nav", "footer", "header", "head":
		case "p":
			w.flushLoose()
			w.emit(docmodel.Block{Kind: docmodel.BlockParagraph, Spans: inlineSpans(c)})
		case "ul", "ol":
			w.flushLoose()
			w.list(c, c.Data == "ol")
		case "table":
			w.flushLoose()
			if b, ok := tableBlock(c); ok {
				w.emit(b)
			}
		case "pre":
			w.flushLoose()
			for _, line := range strings.Split(textContent(c), "\n") {
				if strings.TrimSpace(line) != "" {
					w.emit(docmodel.Block{Kind: docmodel.BlockParagraph, Spans: []docmodel.Span{{Text: line, Code: true}}})
				}
			}
		case "div", "section", "article", "main", "blockquote", "body", "figure":
			w.flushLoose()
			w.blocks(c)
			w.flushLoose()
		case "br":
			w.flushLoose()
		default:
			collectInline(c, docmodel.Span{}, &w.loose)
		}
	}
}

func (w *htmlWalker) list(n *html.Node, ordered bool) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var sb spanBuilder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			collectNode(c, docmodel.Span{}, &sb)
		}
		w.emit(docmodel.Block{Kind: docmodel.BlockListItem, Ordered: ordered, Spans: sb.done()})
		for _, l := range nested {
			w.list(l, l.Data == "ol")
		}
	}
}

func tableBlock(n *html.Node) (docmodel.Block, bool) {
	var headers []string
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data != "tr" {
				visit(c)
				continue
			}
			var cells []string
			header := true
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != html.ElementNode || (cell.Data != "td" && cell.Data != "th") {
					continue
				}
				header = header && cell.Data == "th"
				cells = append(cells, collapseSpace(textContent(cell)))
			}
			if len(cells) == 0 {
				continue
			}
			if header && headers == nil && len(rows) == 0 {
				headers = cells
				continue
			}
			rows = append(rows, cells)
		}
	}
	visit(n)
	if headers == nil && len(rows) > 0 {
		headers, rows = rows[0], rows[1:]
	}
	if len(headers) == 0 {
		return docmodel.Block{}, false
	}
	width := len(headers)
	for _, r := range rows {
		width = max(width, len(r))
	}
	headers = pad(headers, width)
	for i := range rows {
		rows[i] = pad(rows[i], width)
	}
	return docmodel.Block{Kind: docmodel.BlockTable, Headers: headers, Rows: rows}, true
}

func inlineSpans(n *html.Node) []docmodel.Span {
	var sb spanBuilder
	collectInline(n, docmodel.Span{}, &sb)
	return sb.done()
}

func collectInline(n *html.Node, style docmodel.Span, sb *spanBuilder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNode(c, style, sb)
	}
}

func collectNode(n *html.Node, style docmodel.Span, sb *spanBuilder) {
	switch n.Type {
	case html.TextNode:
		s := style
		s.Text = n.Data
		sb.add(s)
		return
	case html.ElementNode:
	default:
		return
	}
	switch n.Data {
	case "script", "style":
		return
	case "b", "strong":
		style.Bold = true
	case "i", "em":
		style.Italic = true
	case "code", "kbd", "samp":
		style.Code = true
	case "a":
		for _, a := range n.Attr {
			if a.Key == "href" {
				style.Link = a.Val
			}
		}
	case "br":
		sb.add(docmodel.Span{Text: " "})
		return
	}
	collectInline(n, style, sb)
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
