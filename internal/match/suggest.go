package match

import (
	"cmp"
	"slices"
)

// MinSimilarity is the lowest normalized similarity a candidate needs to be
// offered as a suggestion.
const MinSimilarity = 0.6

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit names from candidates that look like name,
// best match first. Ties keep the order of candidates.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	norm := Normalize(name)

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := Similarity(norm, Normalize(c))
		if score < MinSimilarity {
			continue
		}

		ranked = append(ranked, scored{name: c, score: score})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}

	return out
}
