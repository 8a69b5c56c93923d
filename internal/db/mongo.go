package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the service.
const (
	CollTrucks         = "trucks"
	CollBookings       = "bookings"
	CollTrips          = "trips"
	CollLocations      = "locations"
	CollTruckLocations = "truck_current_location"
	CollTripShares     = "trip_shares"
	CollUsers          = "users"
)

// Connect connects to MongoDB at the given URI and verifies the
// connection with a ping.
func Connect(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the service relies on. Unique
// (owner_id, truck_id) backs the truck create Conflict contract; unique
// trip_id/booking_id back id uniqueness; otp backs share redemption.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	truckIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "truck_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "truck_id", Value: 1}}},
	}
	if _, err := database.Collection(CollTrucks).Indexes().CreateMany(ctx, truckIdx); err != nil {
		return fmt.Errorf("trucks indexes: %w", err)
	}

	if _, err := database.Collection(CollTrips).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "trip_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("trips index: %w", err)
	}

	if _, err := database.Collection(CollBookings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("bookings index: %w", err)
	}

	if _, err := database.Collection(CollLocations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "trip_id", Value: 1}, {Key: "ts", Value: 1}},
	}); err != nil {
		return fmt.Errorf("locations index: %w", err)
	}

	if _, err := database.Collection(CollTripShares).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "otp", Value: 1}},
	}); err != nil {
		return fmt.Errorf("trip_shares index: %w", err)
	}

	if _, err := database.Collection(CollTruckLocations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "truck_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("truck_current_location index: %w", err)
	}

	userIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := database.Collection(CollUsers).Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	return nil
}
