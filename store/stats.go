package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quarantaenehelden/notification-api/schema"
)

func (m *mongoDB) stats() *mongo.Collection {
	return m.client.Database(m.database).Collection(schema.StatsCollection)
}

// IncrementStat adds n to a counter field on the overview stats document,
// creating the document on first use. Pure $inc: concurrent bumps from the
// api and the worker never clobber each other.
func (m *mongoDB) IncrementStat(field string, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := m.stats().UpdateOne(ctx,
		bson.M{"_id": schema.StatsOverviewID},
		bson.M{
			"$inc": bson.M{
				field: n,
			},
		},
		options.Update().SetUpsert(true),
	)

	return err
}
