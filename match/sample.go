package match

import (
	"math/rand"
)

// Sample caps a candidate list at max elements. Lists within the cap pass
// through untouched. Oversized lists are shuffled in place with a
// Fisher-Yates permutation and truncated, so the pick is uniform among all
// candidates rather than weighted by distance.
func Sample(candidates []Candidate, max int) []Candidate {
	if max <= 0 || len(candidates) <= max {
		return candidates
	}

	for i := len(candidates) - 1; i >= 1; i-- {
		j := rand.Intn(i + 1)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	return candidates[:max]
}
