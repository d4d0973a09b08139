package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quarantaenehelden/notification-api/schema"
)

var (
	ErrRequestNotExist = fmt.Errorf("help request does not exist")
	ErrOfferNotExist   = fmt.Errorf("help offer does not exist")
)

func (m *mongoDB) helpRequests() *mongo.Collection {
	return m.client.Database(m.database).Collection(schema.HelpRequestCollection)
}

func (m *mongoDB) helpOffers() *mongo.Collection {
	return m.client.Database(m.database).Collection(schema.HelpOfferCollection)
}

// CreateHelpRequest creates an ask-for-help document
func (m *mongoDB) CreateHelpRequest(uid, request, location, postalCode string) (*schema.HelpRequest, error) {
	r := schema.HelpRequest{
		ID:                   uuid.New().String(),
		UID:                  uid,
		Request:              request,
		Location:             location,
		PostalCode:           postalCode,
		Timestamp:            time.Now().Unix(),
		NotificationCounter:  0,
		NotificationReceiver: []string{},
		ReportedBy:           []string{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if _, err := m.helpRequests().InsertOne(ctx, r); err != nil {
		return nil, err
	}

	return &r, nil
}

func (m *mongoDB) GetHelpRequest(requestID string) (*schema.HelpRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var r schema.HelpRequest
	err := m.helpRequests().FindOne(ctx, bson.M{"_id": requestID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRequestNotExist
	} else if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateHelpOffer creates an offer-help document attached to a request
func (m *mongoDB) CreateHelpOffer(requestID, uid, postalCode, answer, email string) (*schema.HelpOffer, error) {
	o := schema.HelpOffer{
		ID:         uuid.New().String(),
		RequestID:  requestID,
		UID:        uid,
		PostalCode: postalCode,
		Answer:     answer,
		Email:      email,
		Timestamp:  time.Now().Unix(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if _, err := m.helpOffers().InsertOne(ctx, o); err != nil {
		return nil, err
	}

	return &o, nil
}

func (m *mongoDB) GetHelpOffer(offerID string) (*schema.HelpOffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var o schema.HelpOffer
	err := m.helpOffers().FindOne(ctx, bson.M{"_id": offerID}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOfferNotExist
	} else if err != nil {
		return nil, err
	}

	return &o, nil
}

// FindOffersByPostalRange performs a single range scan over offers ordered
// by postal code. The bound is lexicographic; callers post-filter by code
// length before computing distances.
func (m *mongoDB) FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"plz": 1})
	cur, err := m.helpOffers().Find(ctx, bson.M{
		"plz": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}, opts)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("query offers in range [%s, %s] with error: %s", start, end, err)
		return nil, err
	}

	offers := make([]schema.HelpOffer, 0)
	if err := cur.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("decode offer records with error: %s", err)
	}

	log.WithFields(log.Fields{
		"prefix": mongoLogPrefix,
		"start":  start,
		"end":    end,
		"count":  len(offers),
	}).Debug("postal range scan")

	return offers, nil
}

// FindOffersNear returns offers from nearest to farthest around a point.
// $nearSphere provides documents from nearest to farthest.
// reference: https://docs.mongodb.com/manual/reference/operator/query/nearSphere/#op._S_nearSphere
func (m *mongoDB) FindOffersNear(loc schema.Location, maxMeters int) ([]schema.HelpOffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.D{{
		Key: "coordinates",
		Value: bson.D{{
			Key: "$nearSphere",
			Value: bson.D{{
				Key: "$geometry",
				Value: bson.D{{
					Key:   "type",
					Value: "Point",
				}, {
					Key:   "coordinates",
					Value: bson.A{loc.Longitude, loc.Latitude},
				}, {
					Key:   "$maxDistance",
					Value: maxMeters,
				}},
			}},
		}},
	}}

	cur, err := m.helpOffers().Find(ctx, query)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("query offers near point with error: %s", err)
		return nil, err
	}

	offers := make([]schema.HelpOffer, 0)
	if err := cur.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("decode offer records with error: %s", err)
	}

	return offers, nil
}

// ListUnnotifiedRequests selects requests old enough for the sweep whose
// notification counter is still zero, oldest first. The limit bounds the
// work of one tick and keeps overlapping ticks from piling up.
func (m *mongoDB) ListUnnotifiedRequests(olderThan int64, limit int64) ([]schema.HelpRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"timestamp": 1}).
		SetLimit(limit)

	cur, err := m.helpRequests().Find(ctx, bson.M{
		"timestamp": bson.M{
			"$lte": olderThan,
		},
		"notification_counter": 0,
	}, opts)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("query unnotified requests with error: %s", err)
		return nil, err
	}

	requests := make([]schema.HelpRequest, 0)
	if err := cur.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode request records with error: %s", err)
	}

	return requests, nil
}
