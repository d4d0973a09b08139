package match

import (
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/quarantaenehelden/notification-api/external/mocks"
	"github.com/quarantaenehelden/notification-api/schema"
)

type stubOfferFinder struct {
	rangeStart string
	rangeEnd   string
	nearLoc    schema.Location
	offers     []schema.HelpOffer
	err        error
}

func (s *stubOfferFinder) FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error) {
	s.rangeStart = start
	s.rangeEnd = end
	return s.offers, s.err
}

func (s *stubOfferFinder) FindOffersNear(loc schema.Location, maxMeters int) ([]schema.HelpOffer, error) {
	s.nearLoc = loc
	return s.offers, s.err
}

func TestPostalCodeRangeStrategy(t *testing.T) {
	finder := &stubOfferFinder{
		offers: offersWithCodes("12340", "12345", "12999"),
	}
	strategy := NewPostalCodeRangeStrategy(finder)

	candidates, err := strategy.FindCandidates(&schema.HelpRequest{
		ID:         "req-1",
		PostalCode: "12345",
	}, 30)
	assert.NoError(t, err)
	assert.Equal(t, "12000", finder.rangeStart)
	assert.Equal(t, "12999", finder.rangeEnd)
	assert.Len(t, candidates, 3)
	assert.Equal(t, "12345", candidates[0].PostalCode)
}

func TestPostalCodeRangeStrategyMissingCode(t *testing.T) {
	finder := &stubOfferFinder{}
	strategy := NewPostalCodeRangeStrategy(finder)

	// a missing postal code is a data-quality problem, not an error
	candidates, err := strategy.FindCandidates(&schema.HelpRequest{ID: "req-1"}, 30)
	assert.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Empty(t, finder.rangeStart)
}

func TestPostalCodeRangeStrategyStoreError(t *testing.T) {
	finder := &stubOfferFinder{err: fmt.Errorf("mongo down")}
	strategy := NewPostalCodeRangeStrategy(finder)

	_, err := strategy.FindCandidates(&schema.HelpRequest{
		ID:         "req-1",
		PostalCode: "12345",
	}, 30)
	assert.Error(t, err)
}

func TestGeoRadiusStrategyGeocodesPostalCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	finder := &stubOfferFinder{
		offers: offersWithCodes("12340", "12345"),
	}
	geoMock := mocks.NewMockGeoInfo(ctrl)
	geoMock.EXPECT().Geocode("12345").Return(schema.Location{
		Latitude:  52.5,
		Longitude: 13.4,
	}, nil)

	strategy := NewGeoRadiusStrategy(finder, geoMock, 30000)
	candidates, err := strategy.FindCandidates(&schema.HelpRequest{
		ID:         "req-1",
		PostalCode: "12345",
	}, 30)
	assert.NoError(t, err)
	assert.Equal(t, 52.5, finder.nearLoc.Latitude)
	assert.Len(t, candidates, 2)
	// scan order stands in for spherical distance
	assert.True(t, candidates[0].Distance < candidates[1].Distance)
}

func TestGeoRadiusStrategyUsesStoredCoordinates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	finder := &stubOfferFinder{
		offers: offersWithCodes("12340"),
	}
	geoMock := mocks.NewMockGeoInfo(ctrl) // Geocode must not be called

	strategy := NewGeoRadiusStrategy(finder, geoMock, 30000)
	candidates, err := strategy.FindCandidates(&schema.HelpRequest{
		ID:         "req-1",
		PostalCode: "12345",
		Coordinates: &schema.GeoJSON{
			Type:        "Point",
			Coordinates: []float64{13.4, 52.5},
		},
	}, 30)
	assert.NoError(t, err)
	assert.Equal(t, 52.5, finder.nearLoc.Latitude)
	assert.Len(t, candidates, 1)
}
