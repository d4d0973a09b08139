package store

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// RecordNotification bumps the request's notification counter and unions the
// recipient into the receiver set in one atomic update. Concurrent calls for
// distinct recipients never lose an increment: correctness comes from the
// server-side $inc/$addToSet operators, not from any read-modify-write.
func (m *mongoDB) RecordNotification(requestID, offerUID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := m.helpRequests().UpdateOne(ctx,
		bson.M{"_id": requestID},
		bson.M{
			"$inc": bson.M{
				"notification_counter": 1,
			},
			"$addToSet": bson.M{
				"notification_receiver": offerUID,
			},
		},
	)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("record notification for request %s with error: %s", requestID, err)
		return err
	}

	if result.MatchedCount == 0 {
		return ErrRequestNotExist
	}

	log.WithFields(log.Fields{
		"prefix":  mongoLogPrefix,
		"request": requestID,
		"offer":   offerUID,
	}).Debug("notification recorded")

	return nil
}
