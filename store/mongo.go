package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quarantaenehelden/notification-api/schema"
)

const (
	mongoLogPrefix = "mongo"
	defaultTimeout = 5 * time.Second
)

// MongoStore - interface for mongodb operations
type MongoStore interface {
	HelpDocument
	NotificationLedger
	Moderation
	Stats
	Closer
	Pinger
}

// HelpDocument - help request/offer documents and matching scans
type HelpDocument interface {
	CreateHelpRequest(uid, request, location, postalCode string) (*schema.HelpRequest, error)
	GetHelpRequest(requestID string) (*schema.HelpRequest, error)
	CreateHelpOffer(requestID, uid, postalCode, answer, email string) (*schema.HelpOffer, error)
	GetHelpOffer(offerID string) (*schema.HelpOffer, error)
	FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error)
	FindOffersNear(loc schema.Location, maxMeters int) ([]schema.HelpOffer, error)
	ListUnnotifiedRequests(olderThan int64, limit int64) ([]schema.HelpRequest, error)
}

// NotificationLedger - at-most-once notification bookkeeping per request
type NotificationLedger interface {
	RecordNotification(requestID, offerUID string) error
}

// Moderation - reported-post handling and batched cleanup
type Moderation interface {
	ReportHelpRequest(requestID, reporterUID string) (int, error)
	MoveToDeleted(requestID string) error
	PurgeDeleted(before int64, batchSize int) (int64, error)
}

// Stats - atomic counters on the stats document
type Stats interface {
	IncrementStat(field string, n int) error
}

// Closer - close db connection
type Closer interface {
	Close()
}

// Pinger - ping database
type Pinger interface {
	Ping() error
}

type mongoDB struct {
	client   *mongo.Client
	database string
}

// Ping - ping mongo db
func (m *mongoDB) Ping() error {
	return m.client.Ping(context.Background(), nil)
}

// Close - close mongo db connections
func (m *mongoDB) Close() {
	log.WithField("prefix", mongoLogPrefix).Info("closing mongo db connections")
	_ = m.client.Disconnect(context.Background())
}

// NewMongoStore - return mongo db operations
func NewMongoStore(client *mongo.Client, database string) MongoStore {
	return &mongoDB{
		client:   client,
		database: database,
	}
}
