package match

import (
	log "github.com/sirupsen/logrus"

	"github.com/quarantaenehelden/notification-api/external/geoinfo"
	"github.com/quarantaenehelden/notification-api/schema"
)

const logPrefix = "match"

// OfferFinder is the slice of the store the proximity strategies need.
type OfferFinder interface {
	FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error)
	FindOffersNear(loc schema.Location, maxMeters int) ([]schema.HelpOffer, error)
}

// Strategy finds notification candidates for a help request. cap bounds the
// result; see Nearest for the boundary-tie exception.
type Strategy interface {
	FindCandidates(request *schema.HelpRequest, cap int) ([]Candidate, error)
}

// PostalCodeRangeStrategy matches offers by postal-code closeness inside the
// request's higher-order region.
type PostalCodeRangeStrategy struct {
	store OfferFinder
}

func NewPostalCodeRangeStrategy(store OfferFinder) *PostalCodeRangeStrategy {
	return &PostalCodeRangeStrategy{store: store}
}

func (s *PostalCodeRangeStrategy) FindCandidates(request *schema.HelpRequest, cap int) ([]Candidate, error) {
	start, end, ok := PostalRange(request.PostalCode)
	if !ok {
		// data-quality problem on the document, not an error of ours
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": request.ID,
		}).Warn("request without postal code, skipping match")
		return nil, nil
	}

	offers, err := s.store.FindOffersByPostalRange(start, end)
	if err != nil {
		return nil, err
	}

	return Nearest(request.PostalCode, offers, cap), nil
}

// GeoRadiusStrategy matches offers by spherical distance around the
// request's coordinates. Not active in production yet; selected by
// configuration for experiments.
type GeoRadiusStrategy struct {
	store     OfferFinder
	geoClient geoinfo.GeoInfo
	radius    int
}

func NewGeoRadiusStrategy(store OfferFinder, geoClient geoinfo.GeoInfo, radiusMeters int) *GeoRadiusStrategy {
	return &GeoRadiusStrategy{
		store:     store,
		geoClient: geoClient,
		radius:    radiusMeters,
	}
}

func (s *GeoRadiusStrategy) FindCandidates(request *schema.HelpRequest, cap int) ([]Candidate, error) {
	var loc schema.Location
	if request.Coordinates != nil && len(request.Coordinates.Coordinates) == 2 {
		loc = schema.Location{
			Longitude: request.Coordinates.Coordinates[0],
			Latitude:  request.Coordinates.Coordinates[1],
		}
	} else {
		if request.PostalCode == "" {
			log.WithFields(log.Fields{
				"prefix":  logPrefix,
				"request": request.ID,
			}).Warn("request without postal code or coordinates, skipping match")
			return nil, nil
		}

		resolved, err := s.geoClient.Geocode(request.PostalCode)
		if err != nil {
			return nil, err
		}
		loc = resolved
	}

	offers, err := s.store.FindOffersNear(loc, s.radius)
	if err != nil {
		return nil, err
	}

	// $nearSphere already orders by distance; the scan index stands in for
	// the numeric distance the postal strategy computes.
	candidates := make([]Candidate, 0, len(offers))
	for i, offer := range offers {
		candidates = append(candidates, Candidate{
			UID:        offer.UID,
			OfferID:    offer.ID,
			PostalCode: offer.PostalCode,
			Distance:   int64(i),
		})
	}

	if cap > 0 && len(candidates) > cap {
		candidates = candidates[:cap]
	}

	return candidates, nil
}
