package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// MongoShareCollection implements ShareCollection for MongoDB.
type MongoShareCollection struct {
	Collection *mongo.Collection
}

// Upsert writes the share keyed by trip_id. A trip holds at most one live
// code; reissuing overwrites the previous code and expiry.
func (c *MongoShareCollection) Upsert(ctx context.Context, share models.TripShare) error {
	opts := options.Update().SetUpsert(true)
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"trip_id": share.TripID},
		bson.M{"$set": bson.M{
			"trip_id":    share.TripID,
			"otp":        share.OTP,
			"expires_at": share.ExpiresAt,
			"created_at": share.CreatedAt,
		}},
		opts,
	)
	return err
}

// FindByOTP looks a share up by its code.
func (c *MongoShareCollection) FindByOTP(ctx context.Context, otp string) (*models.TripShare, error) {
	var share models.TripShare
	err := c.Collection.FindOne(ctx, bson.M{"otp": otp}).Decode(&share)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}
