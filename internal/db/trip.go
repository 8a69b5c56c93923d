package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new trip.
func (c *MongoTripCollection) Insert(ctx context.Context, trip models.Trip) error {
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt

	_, err := c.Collection.InsertOne(ctx, trip)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

// Upsert writes the trip keyed by trip_id, creating it when absent. This
// backs the owner-facing create endpoint, which is idempotent by trip id.
func (c *MongoTripCollection) Upsert(ctx context.Context, trip models.Trip) error {
	trip.UpdatedAt = time.Now()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = trip.UpdatedAt
	}

	set := bson.M{
		"trip_id":     trip.TripID,
		"owner_id":    trip.OwnerID,
		"truck_id":    trip.TruckID,
		"customer_id": trip.CustomerID,
		"driver_id":   trip.DriverID,
		"status":      trip.Status,
		"updated_at":  trip.UpdatedAt,
	}
	if trip.PlannedETA != nil {
		set["planned_eta"] = trip.PlannedETA
	}

	opts := options.Update().SetUpsert(true)
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"trip_id": trip.TripID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"created_at": trip.CreatedAt},
		},
		opts,
	)
	return err
}

// FindByTripID finds a trip by its id.
func (c *MongoTripCollection) FindByTripID(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	err := c.Collection.FindOne(ctx, bson.M{"trip_id": tripID}).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// ListByOwner returns the owner's trips, newest first.
func (c *MongoTripCollection) ListByOwner(ctx context.Context, ownerID string) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// Patch applies the non-nil fields of patch and returns the updated trip.
func (c *MongoTripCollection) Patch(ctx context.Context, tripID string, patch models.TripPatch) (*models.Trip, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.PlannedETA != nil {
		set["planned_eta"] = *patch.PlannedETA
	}
	if patch.DriverID != nil {
		set["driver_id"] = *patch.DriverID
	}
	if patch.CustomerID != nil {
		set["customer_id"] = *patch.CustomerID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var trip models.Trip
	err := c.Collection.FindOneAndUpdate(ctx, bson.M{"trip_id": tripID}, bson.M{"$set": set}, opts).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// ApplyTelemetry writes the denormalized location summary onto the trip.
func (c *MongoTripCollection) ApplyTelemetry(ctx context.Context, tripID string, tele models.TripTelemetry) error {
	set := bson.M{
		"last_location": tele.LastLocation,
		"last_update":   tele.LastUpdate,
		"updated_at":    tele.LastUpdate,
	}
	if tele.DelayMinutes != nil {
		set["delay_minutes"] = *tele.DelayMinutes
		set["delay_color"] = tele.DelayColor
	} else {
		// no schedule, no delay classification
		set["delay_minutes"] = nil
		set["delay_color"] = nil
	}

	res, err := c.Collection.UpdateOne(ctx, bson.M{"trip_id": tripID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdvanceToInTransit flips a scheduled trip to in_transit. The status
// filter makes the transition idempotent: a trip already past scheduled
// is left alone and (false, nil) is returned.
func (c *MongoTripCollection) AdvanceToInTransit(ctx context.Context, tripID string) (bool, error) {
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"trip_id": tripID, "status": models.TripStatusScheduled},
		bson.M{"$set": bson.M{"status": models.TripStatusInTransit, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
