package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quarantaenehelden/notification-api/schema"
)

func (m *mongoDB) deleted() *mongo.Collection {
	return m.client.Database(m.database).Collection(schema.DeletedCollection)
}

// ReportHelpRequest unions the reporter into the reported_by set and returns
// the resulting report count. Repeated reports by the same user do not grow
// the set.
func (m *mongoDB) ReportHelpRequest(requestID, reporterUID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := m.helpRequests().UpdateOne(ctx,
		bson.M{"_id": requestID},
		bson.M{
			"$addToSet": bson.M{
				"reported_by": reporterUID,
			},
		},
	)
	if err != nil {
		return 0, err
	}

	if result.MatchedCount == 0 {
		return 0, ErrRequestNotExist
	}

	var r schema.HelpRequest
	if err := m.helpRequests().FindOne(ctx, bson.M{"_id": requestID}).Decode(&r); err != nil {
		return 0, err
	}

	return len(r.ReportedBy), nil
}

// MoveToDeleted moves a reported request and its offers into the deleted
// collection. The copy keeps the original document for review; the originals
// are removed so the sweep and the range scans no longer see them.
func (m *mongoDB) MoveToDeleted(requestID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	request, err := m.GetHelpRequest(requestID)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	docs := []interface{}{
		schema.DeletedDocument{
			ID:         request.ID,
			Collection: schema.HelpRequestCollection,
			Document:   request,
			DeletedAt:  now,
		},
	}

	cur, err := m.helpOffers().Find(ctx, bson.M{"request_id": requestID})
	if err != nil {
		return err
	}

	offers := make([]schema.HelpOffer, 0)
	if err := cur.All(ctx, &offers); err != nil {
		return err
	}
	for _, o := range offers {
		docs = append(docs, schema.DeletedDocument{
			ID:         o.ID,
			Collection: schema.HelpOfferCollection,
			Document:   o,
			DeletedAt:  now,
		})
	}

	if _, err := m.deleted().InsertMany(ctx, docs); err != nil {
		return err
	}

	if _, err := m.helpOffers().DeleteMany(ctx, bson.M{"request_id": requestID}); err != nil {
		return err
	}

	if _, err := m.helpRequests().DeleteOne(ctx, bson.M{"_id": requestID}); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"prefix":  mongoLogPrefix,
		"request": requestID,
		"offers":  len(offers),
	}).Info("moved reported request to deleted collection")

	return nil
}

// PurgeDeleted removes moderated documents older than the given time in an
// explicit fetch/delete loop: one bounded batch per round until a round
// comes back empty. Returns the number of removed documents.
func (m *mongoDB) PurgeDeleted(before int64, batchSize int) (int64, error) {
	var purged int64

	for {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)

		cur, err := m.deleted().Find(ctx,
			bson.M{"deleted_at": bson.M{"$lte": before}},
			options.Find().SetLimit(int64(batchSize)).SetProjection(bson.M{"_id": 1}),
		)
		if err != nil {
			cancel()
			return purged, err
		}

		ids := make([]string, 0, batchSize)
		for cur.Next(ctx) {
			var doc struct {
				ID string `bson:"_id"`
			}
			if err := cur.Decode(&doc); err != nil {
				cancel()
				return purged, err
			}
			ids = append(ids, doc.ID)
		}
		cancel()

		if len(ids) == 0 {
			break
		}

		ctx, cancel = context.WithTimeout(context.Background(), defaultTimeout)
		result, err := m.deleted().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		cancel()
		if err != nil {
			return purged, err
		}

		purged += result.DeletedCount
	}

	log.WithFields(log.Fields{
		"prefix": mongoLogPrefix,
		"purged": purged,
	}).Debug("purged deleted documents")

	return purged, nil
}
