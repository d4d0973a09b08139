package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarantaenehelden/notification-api/schema"
)

func offersWithCodes(codes ...string) []schema.HelpOffer {
	offers := make([]schema.HelpOffer, 0, len(codes))
	for i, code := range codes {
		offers = append(offers, schema.HelpOffer{
			ID:         string(rune('a' + i)),
			UID:        string(rune('A' + i)),
			PostalCode: code,
		})
	}
	return offers
}

func TestPostalRange(t *testing.T) {
	start, end, ok := PostalRange("12345")
	assert.True(t, ok)
	assert.Equal(t, "12000", start)
	assert.Equal(t, "12999", end)

	start, end, ok = PostalRange("1050")
	assert.True(t, ok)
	assert.Equal(t, "1000", start)
	assert.Equal(t, "1999", end)

	// short codes scan the whole band
	start, end, ok = PostalRange("123")
	assert.True(t, ok)
	assert.Equal(t, "000", start)
	assert.Equal(t, "999", end)

	_, _, ok = PostalRange("")
	assert.False(t, ok)
}

func TestNearestSortsByDistance(t *testing.T) {
	offers := offersWithCodes("12350", "12340", "12345", "12001")

	candidates := Nearest("12345", offers, 10)
	assert.Len(t, candidates, 4)
	assert.Equal(t, "12345", candidates[0].PostalCode)
	assert.Equal(t, int64(0), candidates[0].Distance)
	assert.Equal(t, int64(344), candidates[3].Distance)

	for i := 1; i < len(candidates); i++ {
		assert.True(t, candidates[i-1].Distance <= candidates[i].Distance)
	}
}

func TestNearestFiltersCodeLength(t *testing.T) {
	// a lexicographic range scan over variable-length codes can return
	// partial matches; only codes of the target's length survive
	offers := offersWithCodes("12345", "1234", "123456", "12346")

	candidates := Nearest("12345", offers, 10)
	assert.Len(t, candidates, 2)
	for _, c := range candidates {
		assert.Len(t, c.PostalCode, 5)
	}
}

func TestNearestSkipsUnparsableCodes(t *testing.T) {
	offers := offersWithCodes("12345", "12x45")

	candidates := Nearest("12345", offers, 10)
	assert.Len(t, candidates, 1)

	assert.Empty(t, Nearest("no-code", offers, 10))
}

func TestNearestTieKeepsScanOrder(t *testing.T) {
	// 12344 and 12346 are both at distance 1; scan order must survive
	offers := offersWithCodes("12344", "12346")

	candidates := Nearest("12345", offers, 10)
	assert.Equal(t, "12344", candidates[0].PostalCode)
	assert.Equal(t, "12346", candidates[1].PostalCode)
}

func TestNearestBoundaryTierInclusion(t *testing.T) {
	// cap of 2 cuts inside a tier of equal distances: the whole tier stays
	offers := offersWithCodes("12345", "12344", "12346", "12399")

	candidates := Nearest("12345", offers, 2)
	assert.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.True(t, c.Distance <= 1)
	}

	// a clean boundary truncates exactly
	offers = offersWithCodes("12345", "12346", "12350", "12399")
	candidates = Nearest("12345", offers, 2)
	assert.Len(t, candidates, 2)
}
