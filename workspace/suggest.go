package workspace

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	maxSuggestions = 3
	maxDistance    = 2
)

// Suggest returns up to three candidates close to word, best first.
// Candidates that contain the letters of word in order and candidates
// within a small edit distance qualify. Ties prefer a shared first
// letter, then a subsequence match.
func Suggest(word string, candidates []string) []string {
	if word == "" {
		return nil
	}
	lower := strings.ToLower(word)

	subsequence := make(map[string]bool)
	ranks := fuzzy.RankFindFold(word, candidates)
	for _, r := range ranks {
		subsequence[r.Target] = true
	}
	for i, c := range candidates {
		if subsequence[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d <= maxDistance {
			ranks = append(ranks, fuzzy.Rank{Source: word, Target: c, Distance: d, OriginalIndex: i})
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if sa, sb := sameInitial(lower, a.Target), sameInitial(lower, b.Target); sa != sb {
			return sa
		}
		if subsequence[a.Target] != subsequence[b.Target] {
			return subsequence[a.Target]
		}
		return a.Target < b.Target
	})

	var out []string
	for _, r := range ranks {
		if r.Distance > maxDistance || strings.EqualFold(r.Target, word) {
			continue
		}
		out = append(out, r.Target)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func sameInitial(lower, candidate string) bool {
	return candidate != "" && lower[0] == strings.ToLower(candidate)[0]
}
