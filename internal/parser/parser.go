// Package parser converts uploaded files into content fragments that can
// be written into a document.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// Parser converts raw file bytes into a Fragment.
type Parser interface {
	Parse(r io.Reader, filename string) (*docmodel.Fragment, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes parser construction.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFrom(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// spanBuilder accumulates inline spans, merging neighbors that share
// formatting and collapsing whitespace.
type spanBuilder struct {
	spans []docmodel.Span
}

func (b *spanBuilder) add(s docmodel.Span) {
	s.Text = collapseSpace(s.Text)
	if s.Text == "" {
		return
	}
	if n := len(b.spans); n > 0 {
		last := &b.spans[n-1]
		if strings.HasSuffix(last.Text, " ") && strings.HasPrefix(s.Text, " ") {
			s.Text = s.Text[1:]
		}
		if last.Bold == s.Bold && last.Italic == s.Italic && last.Code == s.Code && last.Link == s.Link {
			last.Text += s.Text
			return
		}
	}
	if s.Text != "" {
		b.spans = append(b.spans, s)
	}
}

// done trims the outer whitespace and returns the spans, or nil when no
// text remains.
func (b *spanBuilder) done() []docmodel.Span {
	out := b.spans
	b.spans = nil
	for len(out) > 0 {
		out[0].Text = strings.TrimLeft(out[0].Text, " ")
		if out[0].Text != "" {
			break
		}
		out = out[1:]
	}
	for len(out) > 0 {
		n := len(out) - 1
		out[n].Text = strings.TrimRight(out[n].Text, " ")
		if out[n].Text != "" {
			break
		}
		out = out[:n]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	var sb strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}
