package store

import (
	"github.com/jinzhu/gorm"

	"github.com/quarantaenehelden/notification-api/schema"
)

// HeldenCore is the main datastore facade: account identity lives in
// postgres, help documents in mongo.
type HeldenCore interface {
	Ping() error

	// Identity
	Identity

	// Help documents
	CreateHelpRequest(uid, request, location, postalCode string) (*schema.HelpRequest, error)
	GetHelpRequest(requestID string) (*schema.HelpRequest, error)
	CreateHelpOffer(requestID, uid, postalCode, answer, email string) (*schema.HelpOffer, error)
	GetHelpOffer(offerID string) (*schema.HelpOffer, error)

	// Matching and notification bookkeeping
	FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error)
	FindOffersNear(loc schema.Location, maxMeters int) ([]schema.HelpOffer, error)
	ListUnnotifiedRequests(olderThan int64, limit int64) ([]schema.HelpRequest, error)
	RecordNotification(requestID, offerUID string) error

	// Moderation
	ReportHelpRequest(requestID, reporterUID string) (int, error)
	MoveToDeleted(requestID string) error
	PurgeDeleted(before int64, batchSize int) (int64, error)

	// Stats
	IncrementStat(field string, n int) error
}

// Identity resolves an opaque user id to the address notifications go to.
type Identity interface {
	GetAccountEmail(uid string) (string, error)
}

// HeldenStore is an implementation of HeldenCore
type HeldenStore struct {
	ormDB *gorm.DB
	mongo MongoStore
}

func NewHeldenStore(ormDB *gorm.DB, mongo MongoStore) *HeldenStore {
	return &HeldenStore{
		ormDB: ormDB,
		mongo: mongo,
	}
}

// Ping is to check the storage health status
func (s *HeldenStore) Ping() error {
	if err := s.ormDB.DB().Ping(); err != nil {
		return err
	}
	return s.mongo.Ping()
}

// Document operations delegate to the mongo store.

func (s *HeldenStore) CreateHelpRequest(uid, request, location, postalCode string) (*schema.HelpRequest, error) {
	return s.mongo.CreateHelpRequest(uid, request, location, postalCode)
}

func (s *HeldenStore) GetHelpRequest(requestID string) (*schema.HelpRequest, error) {
	return s.mongo.GetHelpRequest(requestID)
}

func (s *HeldenStore) CreateHelpOffer(requestID, uid, postalCode, answer, email string) (*schema.HelpOffer, error) {
	return s.mongo.CreateHelpOffer(requestID, uid, postalCode, answer, email)
}

func (s *HeldenStore) GetHelpOffer(offerID string) (*schema.HelpOffer, error) {
	return s.mongo.GetHelpOffer(offerID)
}

func (s *HeldenStore) FindOffersByPostalRange(start, end string) ([]schema.HelpOffer, error) {
	return s.mongo.FindOffersByPostalRange(start, end)
}

func (s *HeldenStore) FindOffersNear(loc schema.Location, maxMeters int) ([]schema.HelpOffer, error) {
	return s.mongo.FindOffersNear(loc, maxMeters)
}

func (s *HeldenStore) ListUnnotifiedRequests(olderThan int64, limit int64) ([]schema.HelpRequest, error) {
	return s.mongo.ListUnnotifiedRequests(olderThan, limit)
}

func (s *HeldenStore) RecordNotification(requestID, offerUID string) error {
	return s.mongo.RecordNotification(requestID, offerUID)
}

func (s *HeldenStore) ReportHelpRequest(requestID, reporterUID string) (int, error) {
	return s.mongo.ReportHelpRequest(requestID, reporterUID)
}

func (s *HeldenStore) MoveToDeleted(requestID string) error {
	return s.mongo.MoveToDeleted(requestID)
}

func (s *HeldenStore) PurgeDeleted(before int64, batchSize int) (int64, error) {
	return s.mongo.PurgeDeleted(before, batchSize)
}

func (s *HeldenStore) IncrementStat(field string, n int) error {
	return s.mongo.IncrementStat(field, n)
}
