package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*docmodel.Fragment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	frag := &docmodel.Fragment{Title: titleFrom(filename)}
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			frag.Blocks = append(frag.Blocks, docmodel.TextBlock(docmodel.BlockParagraph, current.String()))
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frag, nil
}
