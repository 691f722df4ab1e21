package resolve

import (
	"sort"
	"strings"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
	"github.com/EastAgile/google-docs-mcp/internal/docmodel"
)

// textIndex is the logical concatenation of segment texts plus, for each
// segment, the byte position where it begins in that string.
type textIndex struct {
	segs   []Segment
	starts []int
	text   string
}

func newTextIndex(segs []Segment) textIndex {
	starts := make([]int, len(segs))
	var sb strings.Builder
	for i, s := range segs {
		starts[i] = sb.Len()
		sb.WriteString(s.Text)
	}
	return textIndex{segs: segs, starts: starts, text: sb.String()}
}

// segmentAt returns the index of the segment whose logical span holds the
// byte at pos, or -1.
func (ix textIndex) segmentAt(pos int) int {
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > pos }) - 1
	if i < 0 || pos >= ix.starts[i]+len(ix.segs[i].Text) {
		return -1
	}
	return i
}

// mapMatch converts the logical byte span [ms, me) to absolute offsets.
// It fails when either endpoint has no covering segment or the span crosses
// a structural gap between two segments.
func (ix textIndex) mapMatch(ms, me int) (docmodel.Range, bool) {
	si := ix.segmentAt(ms)
	ei := ix.segmentAt(me - 1)
	if si < 0 || ei < 0 {
		return docmodel.Range{}, false
	}
	for k := si; k < ei; k++ {
		if ix.segs[k].End != ix.segs[k+1].Start {
			return docmodel.Range{}, false
		}
	}
	start := ix.segs[si].Start + docmodel.Len16(ix.segs[si].Text[:ms-ix.starts[si]])
	end := ix.segs[ei].Start + docmodel.Len16(ix.segs[ei].Text[:me-ix.starts[ei]])
	return docmodel.Range{Start: start, End: end}, true
}

// scan calls fn for each valid non-overlapping match of needle in order
// until fn returns false.
func (ix textIndex) scan(needle string, fn func(docmodel.Range) bool) {
	from := 0
	for from <= len(ix.text)-len(needle) {
		i := strings.Index(ix.text[from:], needle)
		if i < 0 {
			return
		}
		ms := from + i
		me := ms + len(needle)
		r, ok := ix.mapMatch(ms, me)
		if !ok {
			from = ms + runeWidth(ix.text, ms)
			continue
		}
		if !fn(r) {
			return
		}
		from = me
	}
}

// FindText returns the range of the occurrence-th (1-indexed) match of
// needle. Matches straddling a structural gap are skipped and do not count.
func FindText(segs []Segment, needle string, occurrence int) (docmodel.Range, error) {
	if needle == "" {
		return docmodel.Range{}, docerr.New(docerr.KindInvalidRequest, "search text must not be empty")
	}
	if occurrence < 1 {
		return docmodel.Range{}, docerr.New(docerr.KindInvalidRequest, "occurrence must be >= 1, got %d", occurrence)
	}

	var (
		found docmodel.Range
		count int
	)
	newTextIndex(segs).scan(needle, func(r docmodel.Range) bool {
		count++
		if count == occurrence {
			found = r
			return false
		}
		return true
	})
	if count < occurrence {
		return docmodel.Range{}, docerr.New(docerr.KindNotFound, "occurrence %d of %q not found (%d matches)", occurrence, needle, count)
	}
	return found, nil
}

// FindAll returns every valid match of needle in document order.
func FindAll(segs []Segment, needle string) []docmodel.Range {
	if needle == "" {
		return nil
	}
	var out []docmodel.Range
	newTextIndex(segs).scan(needle, func(r docmodel.Range) bool {
		out = append(out, r)
		return true
	})
	return out
}
