package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windsorlogistics/truck-tracker/internal/db/dbtest"
	"github.com/windsorlogistics/truck-tracker/internal/events"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

func newFixture(t *testing.T) (*Service, *dbtest.FakeTrucks, *dbtest.FakeBookings, *dbtest.FakeTrips) {
	t.Helper()
	trucks := dbtest.NewFakeTrucks()
	bookings := dbtest.NewFakeBookings()
	trips := dbtest.NewFakeTrips()
	require.NoError(t, trucks.Insert(context.Background(), models.Truck{
		TruckID: "T1",
		OwnerID: "owner-1",
		Type:    models.TruckTypeBox,
		Status:  models.TruckStatusAvailable,
	}))
	svc := NewService(trucks, bookings, trips, events.NewPublisher(""))
	return svc, trucks, bookings, trips
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		TruckID:        "T1",
		CustomerName:   "Acme Freight",
		PickupLocation: "Windsor",
		DropLocation:   "Detroit",
		BookingDate:    "2025-03-01",
		BookingTime:    "09:00",
	}
}

func TestBook_CreatesPair(t *testing.T) {
	svc, trucks, _, _ := newFixture(t)

	booking, trip, err := svc.Book(context.Background(), "customer-1", validRequest())
	require.NoError(t, err)

	assert.Equal(t, booking.TripID, trip.TripID)
	assert.Equal(t, booking.BookingID, trip.BookingID)
	assert.Equal(t, "T1", trip.TruckID)
	assert.Equal(t, "owner-1", trip.OwnerID)
	assert.Equal(t, "customer-1", trip.CustomerID)
	assert.Equal(t, models.TripStatusScheduled, trip.Status)

	reserved, err := trucks.FindByTruckID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.TruckStatusBooked, reserved.Status)
}

func TestBook_ExactlyOneWinner(t *testing.T) {
	svc, trucks, bookings, trips := newFixture(t)

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Book(context.Background(), "customer-1", validRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, unavailable int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrTruckUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, unavailable)
	assert.Len(t, bookings.Bookings, 1)
	assert.Len(t, trips.Trips, 1)

	final, err := trucks.FindByTruckID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.TruckStatusBooked, final.Status)
}

func TestBook_UnknownTruck(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	req := validRequest()
	req.TruckID = "T-missing"

	_, _, err := svc.Book(context.Background(), "customer-1", req)
	assert.ErrorIs(t, err, ErrTruckUnavailable)
}

func TestBook_ValidationRejectedBeforeStore(t *testing.T) {
	svc, trucks, bookings, _ := newFixture(t)
	req := validRequest()
	req.PickupLocation = ""

	_, _, err := svc.Book(context.Background(), "customer-1", req)
	assert.Error(t, err)
	assert.IsType(t, models.FieldError{}, err)

	// nothing touched the store
	truck, err := trucks.FindByTruckID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.TruckStatusAvailable, truck.Status)
	assert.Empty(t, bookings.Bookings)
}

func TestBook_CompensatesWhenTripWriteFails(t *testing.T) {
	svc, trucks, bookings, trips := newFixture(t)
	trips.InsertErr = errors.New("write failed")

	_, _, err := svc.Book(context.Background(), "customer-1", validRequest())
	assert.Error(t, err)

	// no orphan booking remains and the truck is back to available
	assert.Empty(t, bookings.Bookings)
	truck, err := trucks.FindByTruckID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.TruckStatusAvailable, truck.Status)
}

func TestBook_ReleasesTruckWhenBookingWriteFails(t *testing.T) {
	svc, trucks, bookings, _ := newFixture(t)
	bookings.InsertErr = errors.New("write failed")

	_, _, err := svc.Book(context.Background(), "customer-1", validRequest())
	assert.Error(t, err)

	truck, err := trucks.FindByTruckID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.TruckStatusAvailable, truck.Status)
}
