package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// CSVParser turns a CSV file into a single table block. The first record
// is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*docmodel.Fragment, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	frag := &docmodel.Fragment{Title: titleFrom(filename)}
	if len(records) == 0 {
		return frag, nil
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	headers := pad(records[0], width)
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, pad(rec, width))
	}

	frag.Blocks = []docmodel.Block{{Kind: docmodel.BlockTable, Headers: headers, Rows: rows}}
	return frag, nil
}

func pad(rec []string, width int) []string {
	if len(rec) >= width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
