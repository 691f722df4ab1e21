package docmodel

import (
	"fmt"
	"unicode/utf16"
)

// Selector addresses a document and, optionally, one of its tabs.
type Selector struct {
	DocumentID string
	TabID      string
}

// Range is a half-open [Start, End) offset range.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Empty() bool { return r.End <= r.Start }

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether the two ranges share at least one offset.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Len16 returns the length of s in UTF-16 code units, the unit the remote
// service counts offsets in.
func Len16(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}
