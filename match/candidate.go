package match

import (
	"sort"
	"strconv"

	"github.com/quarantaenehelden/notification-api/schema"
)

// Candidate is a help offer under consideration for a specific help request.
type Candidate struct {
	UID        string
	OfferID    string
	PostalCode string
	Distance   int64
}

// PostalRange derives the scan bounds for a postal code by cutting off its
// last three digits: every offer sharing the same higher-order region falls
// inside [prefix+"000", prefix+"999"]. Codes of three digits or fewer scan
// the whole band. ok is false for an empty code.
func PostalRange(code string) (start, end string, ok bool) {
	if code == "" {
		return "", "", false
	}

	prefix := ""
	if len(code) > 3 {
		prefix = code[:len(code)-3]
	}

	return prefix + "000", prefix + "999", true
}

// Nearest turns scanned offers into candidates ordered by numeric closeness
// to the target postal code. Offers whose code length differs from the
// target's are dropped; the lexicographic range scan can return partial
// matches for variable-length codes. Ties keep scan order.
//
// When more than cap candidates remain, every candidate at a distance no
// greater than the cap-th smallest survives, so the result may exceed cap
// when the boundary distance is shared. The sampler applies the hard cap.
func Nearest(target string, offers []schema.HelpOffer, cap int) []Candidate {
	targetCode, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return nil
	}

	candidates := make([]Candidate, 0, len(offers))
	for _, offer := range offers {
		if len(offer.PostalCode) != len(target) {
			continue
		}

		code, err := strconv.ParseInt(offer.PostalCode, 10, 64)
		if err != nil {
			continue
		}

		distance := targetCode - code
		if distance < 0 {
			distance = -distance
		}

		candidates = append(candidates, Candidate{
			UID:        offer.UID,
			OfferID:    offer.ID,
			PostalCode: offer.PostalCode,
			Distance:   distance,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if cap > 0 && len(candidates) > cap {
		boundary := candidates[cap-1].Distance
		cut := cap
		for cut < len(candidates) && candidates[cut].Distance <= boundary {
			cut++
		}
		candidates = candidates[:cut]
	}

	return candidates
}
