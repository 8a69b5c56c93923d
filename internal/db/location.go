package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// MongoLocationCollection implements LocationCollection for MongoDB.
// Samples are append-only; nothing here updates or deletes.
type MongoLocationCollection struct {
	Collection *mongo.Collection
}

// Append inserts one location history row.
func (c *MongoLocationCollection) Append(ctx context.Context, sample models.LocationSample) error {
	_, err := c.Collection.InsertOne(ctx, sample)
	return err
}

// ListByTrip returns the trip's samples in time order, up to limit.
func (c *MongoLocationCollection) ListByTrip(ctx context.Context, tripID string, limit int64) ([]models.LocationSample, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var samples []models.LocationSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// MongoTruckLocationCollection implements TruckLocationCollection for
// MongoDB. One document per truck, overwritten on every report.
type MongoTruckLocationCollection struct {
	Collection *mongo.Collection
}

// Upsert overwrites the truck's current position.
func (c *MongoTruckLocationCollection) Upsert(ctx context.Context, loc models.TruckLocation) error {
	opts := options.Update().SetUpsert(true)
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"truck_id": loc.TruckID},
		bson.M{"$set": loc},
		opts,
	)
	return err
}

// Get returns the truck's current position.
func (c *MongoTruckLocationCollection) Get(ctx context.Context, truckID string) (*models.TruckLocation, error) {
	var loc models.TruckLocation
	err := c.Collection.FindOne(ctx, bson.M{"truck_id": truckID}).Decode(&loc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
