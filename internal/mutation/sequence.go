package mutation

import (
	"sort"

	"github.com/EastAgile/google-docs-mcp/internal/docerr"
)

// Sequence orders requests computed against one snapshot so each can be
// applied in turn without disturbing the offsets of those after it.
//
// Non-shifting requests (styles, bullets) come first, in the given order,
// while the snapshot offsets still hold. Shifting requests follow, sorted by
// descending start; at equal start a delete precedes an insert so text
// inserted at a deleted range's start survives. Inserts sharing an offset
// keep their given order, which places the last one first in the document.
//
// Overlapping deletes, or an insert strictly inside a deleted range, have no
// order that preserves both and are rejected. Nil requests are dropped.
func Sequence(reqs []*Request) ([]*Request, error) {
	var fixed, shifting []*Request
	for _, r := range reqs {
		if r == nil {
			continue
		}
		if t := r.Target(); t.Start < 0 || t.End < t.Start {
			return nil, docerr.New(docerr.KindInvalidRequest, "%s has invalid range [%d,%d)", r.Kind(), t.Start, t.End)
		}
		if r.Shifts() {
			shifting = append(shifting, r)
		} else {
			fixed = append(fixed, r)
		}
	}

	sort.SliceStable(shifting, func(i, j int) bool {
		a, b := shifting[i].Target().Start, shifting[j].Target().Start
		if a != b {
			return a > b
		}
		return rank(shifting[i]) < rank(shifting[j])
	})

	if err := checkConflicts(shifting); err != nil {
		return nil, err
	}

	out := make([]*Request, 0, len(fixed)+len(shifting))
	out = append(out, fixed...)
	return append(out, shifting...), nil
}

func rank(r *Request) int {
	if r.Kind() == KindDeleteRange {
		return 0
	}
	return 1
}

func checkConflicts(shifting []*Request) error {
	for i, a := range shifting {
		if a.Kind() != KindDeleteRange {
			continue
		}
		ra := a.Target()
		for j, b := range shifting {
			if i == j {
				continue
			}
			rb := b.Target()
			if b.Kind() == KindDeleteRange {
				if j > i && ra.Overlaps(rb) {
					return docerr.New(docerr.KindInvalidRequest, "overlapping deletes %v and %v", ra, rb)
				}
				continue
			}
			if rb.Start > ra.Start && rb.Start < ra.End {
				return docerr.New(docerr.KindInvalidRequest, "%s at %d falls inside deleted range %v", b.Kind(), rb.Start, ra)
			}
		}
	}
	return nil
}
