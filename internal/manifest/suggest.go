package manifest

import (
	"fmt"

	"github.com/sahilm/fuzzy"
)

// suggest returns a " (did you mean ...?)" hint naming the closest candidate,
// or an empty string when nothing is close.
func suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	best := ""
	bestScore := 0
	for _, match := range fuzzy.Find(name, candidates) {
		if best == "" || match.Score > bestScore {
			best, bestScore = match.Str, match.Score
		}
	}
	if best == "" {
		// A typo that adds characters still contains the intended name.
		for _, candidate := range candidates {
			if len(candidate) < 2 {
				continue
			}
			matches := fuzzy.Find(candidate, []string{name})
			if len(matches) > 0 && (best == "" || matches[0].Score > bestScore) {
				best, bestScore = candidate, matches[0].Score
			}
		}
	}
	if best == "" || best == name {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
