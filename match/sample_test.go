package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numberedCandidates(n int) []Candidate {
	candidates := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		candidates = append(candidates, Candidate{
			UID:        fmt.Sprintf("uid-%d", i),
			PostalCode: fmt.Sprintf("%05d", 12000+i),
		})
	}
	return candidates
}

func TestSampleWithinCapReturnsInput(t *testing.T) {
	candidates := numberedCandidates(5)

	sampled := Sample(candidates, 30)
	assert.Len(t, sampled, 5)

	members := map[string]bool{}
	for _, c := range sampled {
		members[c.UID] = true
	}
	for i := 0; i < 5; i++ {
		assert.True(t, members[fmt.Sprintf("uid-%d", i)])
	}
}

func TestSampleOverCapReturnsExactlyCap(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		sampled := Sample(numberedCandidates(40), 30)
		assert.Len(t, sampled, 30)

		seen := map[string]bool{}
		for _, c := range sampled {
			assert.False(t, seen[c.UID], "duplicate candidate in sample")
			seen[c.UID] = true
		}
	}
}

func TestSampleSelectionsVary(t *testing.T) {
	// repeated sweeps over the same candidate set must not keep picking the
	// identical subset; the worker seeds the global source at startup
	distinct := map[string]bool{}
	for trial := 0; trial < 10; trial++ {
		key := ""
		for _, c := range Sample(numberedCandidates(40), 30) {
			key += c.UID + ","
		}
		distinct[key] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestSampleIsRoughlyUniform(t *testing.T) {
	// every candidate should be picked in about half of the trials when
	// sampling 10 of 20; a wide tolerance keeps the test stable
	const trials = 2000
	picked := map[string]int{}

	for trial := 0; trial < trials; trial++ {
		for _, c := range Sample(numberedCandidates(20), 10) {
			picked[c.UID]++
		}
	}

	assert.Len(t, picked, 20)
	for uid, count := range picked {
		ratio := float64(count) / trials
		assert.InDelta(t, 0.5, ratio, 0.1, "candidate %s picked with ratio %f", uid, ratio)
	}
}
