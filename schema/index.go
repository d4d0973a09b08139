package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBIndexer struct {
	ctx      context.Context
	dbName   string
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBIndexer(connectionString, dbName string) *MongoDBIndexer {
	ctx := context.Background()
	opts := options.Client().ApplyURI(connectionString)
	client, err := mongo.NewClient(opts)
	if err != nil {
		panic(err)
	}
	if err := client.Connect(ctx); err != nil {
		panic(err)
	}

	return &MongoDBIndexer{
		ctx:      ctx,
		dbName:   dbName,
		Client:   client,
		Database: client.Database(dbName),
	}
}

func (m *MongoDBIndexer) createIndex(collection string, index mongo.IndexModel) error {
	c := m.Database.Collection(collection)
	_, err := c.Indexes().CreateOne(m.ctx, index)
	return err
}

func panicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func (m *MongoDBIndexer) IndexAll() {
	panicIfError(m.IndexHelpRequestCollection())
	panicIfError(m.IndexHelpOfferCollection())
	panicIfError(m.IndexDeletedCollection())
}

// IndexHelpRequestCollection backs the sweep selection query: requests are
// picked by timestamp order among those never notified.
func (m *MongoDBIndexer) IndexHelpRequestCollection() error {
	return m.createIndex(HelpRequestCollection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "notification_counter", Value: 1},
			{Key: "timestamp", Value: 1},
		},
	})
}

// IndexHelpOfferCollection backs the postal-code range scan and the inactive
// geo-radius strategy.
func (m *MongoDBIndexer) IndexHelpOfferCollection() error {
	if err := m.createIndex(HelpOfferCollection, mongo.IndexModel{
		Keys: bson.M{
			"plz": 1,
		},
	}); err != nil {
		return err
	}

	if err := m.createIndex(HelpOfferCollection, mongo.IndexModel{
		Keys: bson.M{
			"request_id": 1,
		},
	}); err != nil {
		return err
	}

	return m.createIndex(HelpOfferCollection, mongo.IndexModel{
		Keys: bson.M{
			"coordinates": "2dsphere",
		},
	})
}

func (m *MongoDBIndexer) IndexDeletedCollection() error {
	return m.createIndex(DeletedCollection, mongo.IndexModel{
		Keys: bson.M{
			"deleted_at": 1,
		},
	})
}
