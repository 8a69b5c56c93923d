package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// MongoBookingCollection implements BookingCollection for MongoDB.
type MongoBookingCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new booking.
func (c *MongoBookingCollection) Insert(ctx context.Context, booking models.Booking) error {
	booking.CreatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, booking)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

// Delete removes a booking by its id. Used by the compensation path when
// the paired trip write fails.
func (c *MongoBookingCollection) Delete(ctx context.Context, bookingID string) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns bookings, newest first.
func (c *MongoBookingCollection) List(ctx context.Context) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
