package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureOrderIndexes creates the unique indexes on trackingNumber and
// orderNumber. Identifier generation is only advisory; these indexes are
// the authoritative uniqueness guard under concurrent creation.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	trackingIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "trackingNumber", Value: 1}},
		Options: options.Index().
			SetName("trackingNumber_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"trackingNumber": bson.M{
					"$exists": true,
				},
			}),
	}

	orderNumberIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orderNumber", Value: 1}},
		Options: options.Index().
			SetName("orderNumber_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"orderNumber": bson.M{
					"$exists": true,
				},
			}),
	}

	createdAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	}

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		trackingIndex,
		orderNumberIndex,
		createdAtIndex,
	})
	return err
}
