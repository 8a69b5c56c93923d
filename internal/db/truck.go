package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// MongoTruckCollection implements TruckCollection for MongoDB.
type MongoTruckCollection struct {
	Collection *mongo.Collection
}

// Insert inserts a new truck. The unique (owner_id, truck_id) index turns
// a duplicate registration into ErrConflict.
func (c *MongoTruckCollection) Insert(ctx context.Context, truck models.Truck) error {
	truck.CreatedAt = time.Now()
	truck.UpdatedAt = truck.CreatedAt

	_, err := c.Collection.InsertOne(ctx, truck)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

// FindByTruckID finds a truck by its fleet id.
func (c *MongoTruckCollection) FindByTruckID(ctx context.Context, truckID string) (*models.Truck, error) {
	var truck models.Truck
	err := c.Collection.FindOne(ctx, bson.M{"truck_id": truckID}).Decode(&truck)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &truck, nil
}

// ListByOwner returns the owner's trucks, oldest first.
func (c *MongoTruckCollection) ListByOwner(ctx context.Context, ownerID string) ([]models.Truck, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trucks []models.Truck
	if err := cursor.All(ctx, &trucks); err != nil {
		return nil, err
	}
	return trucks, nil
}

// ListByStatus returns all trucks in the given status.
func (c *MongoTruckCollection) ListByStatus(ctx context.Context, status models.TruckStatus) ([]models.Truck, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trucks []models.Truck
	if err := cursor.All(ctx, &trucks); err != nil {
		return nil, err
	}
	return trucks, nil
}

// Patch applies the non-nil fields of patch to the owner's truck and
// returns the updated document.
func (c *MongoTruckCollection) Patch(ctx context.Context, ownerID, truckID string, patch models.TruckPatch) (*models.Truck, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var truck models.Truck
	err := c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"owner_id": ownerID, "truck_id": truckID},
		bson.M{"$set": set},
		opts,
	).Decode(&truck)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &truck, nil
}

// Reserve claims an available truck for a booking. The transition is a
// single findAndModify so concurrent callers cannot both observe
// status=available: exactly one request wins, the rest get ErrNotFound.
func (c *MongoTruckCollection) Reserve(ctx context.Context, truckID string) (*models.Truck, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var truck models.Truck
	err := c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"truck_id": truckID, "status": models.TruckStatusAvailable},
		bson.M{"$set": bson.M{"status": models.TruckStatusBooked, "updated_at": time.Now()}},
		opts,
	).Decode(&truck)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &truck, nil
}

// Release puts a booked truck back to available. Used by the booking
// compensation path when the trip write fails after a reservation.
func (c *MongoTruckCollection) Release(ctx context.Context, truckID string) error {
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"truck_id": truckID, "status": models.TruckStatusBooked},
		bson.M{"$set": bson.M{"status": models.TruckStatusAvailable, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
