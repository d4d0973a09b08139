package geoinfo

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"

	"github.com/quarantaenehelden/notification-api/schema"
)

const (
	logPrefix      = "geoinfo"
	defaultTimeout = 5 * time.Second
	defaultRegion  = "de"
)

var ErrNoGeoResult = fmt.Errorf("no geocoding result")

// GeoInfo - resolve a postal code to coordinates
type GeoInfo interface {
	Geocode(postalCode string) (schema.Location, error)
}

type geoInfo struct {
	client *maps.Client
	region string
}

func (g geoInfo) Geocode(postalCode string) (schema.Location, error) {
	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"plz":    postalCode,
	}).Info("geocode postal code")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Components: map[maps.Component]string{
			maps.ComponentPostalCode: postalCode,
		},
		Region: g.region,
	})
	if err != nil {
		return schema.Location{}, err
	}

	if len(results) == 0 {
		return schema.Location{}, ErrNoGeoResult
	}

	return schema.Location{
		Latitude:  results[0].Geometry.Location.Lat,
		Longitude: results[0].Geometry.Location.Lng,
	}, nil
}

// New - new GeoInfo interface
func New(apiKey, region string) (GeoInfo, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"error":  err,
		}).Error("new map client")

		return nil, err
	}

	if region == "" {
		region = defaultRegion
	}

	return &geoInfo{
		client: client,
		region: region,
	}, nil
}
