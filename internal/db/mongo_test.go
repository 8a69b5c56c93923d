package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

func TestConnect_BadURI(t *testing.T) {
	client, err := Connect("mongodb://bad-host.invalid:27017/?connectTimeoutMS=500&serverSelectionTimeoutMS=500")
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		client.Disconnect(context.Background())
	}
}

func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := Connect(uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })
	return client.Database("test_truck_tracker")
}

// Integration test (requires running MongoDB)
func TestMongoTruckCollection_ReserveExactlyOnce(t *testing.T) {
	database := testDatabase(t)
	collection := database.Collection(CollTrucks)
	collection.Drop(context.Background())

	trucks := &MongoTruckCollection{Collection: collection}
	err := trucks.Insert(context.Background(), models.Truck{
		TruckID: "T1",
		OwnerID: "owner-1",
		Type:    models.TruckTypeBox,
		Status:  models.TruckStatusAvailable,
	})
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	wins := make(chan *models.Truck, callers)
	losses := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			truck, err := trucks.Reserve(context.Background(), "T1")
			if err != nil {
				losses <- err
				return
			}
			wins <- truck
		}()
	}
	wg.Wait()
	close(wins)
	close(losses)

	assert.Len(t, wins, 1)
	assert.Len(t, losses, callers-1)
	for err := range losses {
		assert.ErrorIs(t, err, ErrNotFound)
	}

	final, err := trucks.FindByTruckID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.TruckStatusBooked, final.Status)
}

func TestMongoTruckCollection_InsertDuplicate(t *testing.T) {
	database := testDatabase(t)
	collection := database.Collection(CollTrucks)
	collection.Drop(context.Background())
	require.NoError(t, EnsureIndexes(context.Background(), database))

	trucks := &MongoTruckCollection{Collection: collection}
	truck := models.Truck{TruckID: "T2", OwnerID: "owner-1", Type: models.TruckTypePickup, Status: models.TruckStatusAvailable}
	require.NoError(t, trucks.Insert(context.Background(), truck))

	err := trucks.Insert(context.Background(), truck)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMongoTripCollection_PatchPartial(t *testing.T) {
	database := testDatabase(t)
	collection := database.Collection(CollTrips)
	collection.Drop(context.Background())

	trips := &MongoTripCollection{Collection: collection}
	eta := time.Now().Add(2 * time.Hour).Truncate(time.Millisecond)
	require.NoError(t, trips.Insert(context.Background(), models.Trip{
		TripID:     "tr-1",
		OwnerID:    "owner-1",
		Status:     models.TripStatusScheduled,
		PlannedETA: &eta,
	}))

	status := models.TripStatusCancelled
	updated, err := trips.Patch(context.Background(), "tr-1", models.TripPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCancelled, updated.Status)
	// omitted fields are untouched
	require.NotNil(t, updated.PlannedETA)
	assert.WithinDuration(t, eta, *updated.PlannedETA, time.Second)

	_, err = trips.Patch(context.Background(), "tr-missing", models.TripPatch{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoTripCollection_AdvanceToInTransit(t *testing.T) {
	database := testDatabase(t)
	collection := database.Collection(CollTrips)
	collection.Drop(context.Background())

	trips := &MongoTripCollection{Collection: collection}
	require.NoError(t, trips.Insert(context.Background(), models.Trip{
		TripID: "tr-2",
		Status: models.TripStatusScheduled,
	}))

	advanced, err := trips.AdvanceToInTransit(context.Background(), "tr-2")
	require.NoError(t, err)
	assert.True(t, advanced)

	// idempotent: a second sample leaves the status alone
	advanced, err = trips.AdvanceToInTransit(context.Background(), "tr-2")
	require.NoError(t, err)
	assert.False(t, advanced)

	trip, err := trips.FindByTripID(context.Background(), "tr-2")
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusInTransit, trip.Status)
}

func TestMongoShareCollection_UpsertOverwrites(t *testing.T) {
	database := testDatabase(t)
	collection := database.Collection(CollTripShares)
	collection.Drop(context.Background())

	shares := &MongoShareCollection{Collection: collection}
	now := time.Now().Truncate(time.Millisecond)
	require.NoError(t, shares.Upsert(context.Background(), models.TripShare{
		TripID: "tr-1", OTP: "111111", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now,
	}))
	require.NoError(t, shares.Upsert(context.Background(), models.TripShare{
		TripID: "tr-1", OTP: "222222", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now,
	}))

	_, err := shares.FindByOTP(context.Background(), "111111")
	assert.ErrorIs(t, err, ErrNotFound)

	share, err := shares.FindByOTP(context.Background(), "222222")
	require.NoError(t, err)
	assert.Equal(t, "tr-1", share.TripID)
}
