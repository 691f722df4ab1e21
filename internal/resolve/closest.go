package resolve

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Closest returns the stretch of document text most similar to needle,
// compared word-window by word-window within each line. It is a hint for
// "not found" responses, never a match.
func Closest(segs []Segment, needle string) (string, bool) {
	want := strings.Fields(strings.ToLower(needle))
	if len(want) == 0 {
		return "", false
	}
	target := strings.Join(want, " ")

	best, bestDist := "", -1
	for _, line := range strings.Split(Text(segs), "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		size := len(want)
		if size > len(words) {
			size = len(words)
		}
		for i := 0; i+size <= len(words); i++ {
			candidate := strings.Join(words[i:i+size], " ")
			d := levenshtein.ComputeDistance(target, strings.ToLower(candidate))
			if bestDist < 0 || d < bestDist {
				best, bestDist = candidate, d
			}
		}
	}
	if bestDist < 0 || bestDist > len(target)/2 {
		return "", false
	}
	return best, true
}
