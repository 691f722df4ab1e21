package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*docmodel.Fragment, error) {
	// go-docx needs a ReaderAt plus size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "docsmcp-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	frag := &docmodel.Fragment{Title: titleFrom(filename)}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		spans := docxSpans(para)
		if len(spans) == 0 {
			continue
		}
		block := docmodel.Block{Kind: docmodel.BlockParagraph, Spans: spans}
		if level := docxHeadingLevel(para); level > 0 {
			block.Kind, block.Level = docmodel.BlockHeading, level
		} else if docxListParagraph(para) {
			block.Kind = docmodel.BlockListItem
		}
		frag.Blocks = append(frag.Blocks, block)
	}
	return frag, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := strings.ToLower(strings.ReplaceAll(docxStyle(para), " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func docxListParagraph(para *docx.Paragraph) bool {
	style := strings.ToLower(strings.ReplaceAll(docxStyle(para), " ", ""))
	return strings.HasPrefix(style, "listparagraph") || strings.HasPrefix(style, "listbullet")
}

func docxSpans(para *docx.Paragraph) []docmodel.Span {
	var sb spanBuilder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var style docmodel.Span
		if rp := run.RunProperties; rp != nil {
			style.Bold = rp.Bold != nil
			style.Italic = rp.Italic != nil
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				s := style
				s.Text = t.Text
				sb.add(s)
			}
		}
	}
	return sb.done()
}
