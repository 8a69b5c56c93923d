package db

import (
	"context"

	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// TruckCollection defines the interface for truck data operations.
type TruckCollection interface {
	Insert(ctx context.Context, truck models.Truck) error
	FindByTruckID(ctx context.Context, truckID string) (*models.Truck, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Truck, error)
	ListByStatus(ctx context.Context, status models.TruckStatus) ([]models.Truck, error)
	Patch(ctx context.Context, ownerID, truckID string, patch models.TruckPatch) (*models.Truck, error)
	Reserve(ctx context.Context, truckID string) (*models.Truck, error)
	Release(ctx context.Context, truckID string) error
}

// BookingCollection defines the interface for booking data operations.
type BookingCollection interface {
	Insert(ctx context.Context, booking models.Booking) error
	Delete(ctx context.Context, bookingID string) error
	List(ctx context.Context) ([]models.Booking, error)
}

// TripCollection defines the interface for trip data operations.
type TripCollection interface {
	Insert(ctx context.Context, trip models.Trip) error
	Upsert(ctx context.Context, trip models.Trip) error
	FindByTripID(ctx context.Context, tripID string) (*models.Trip, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Trip, error)
	Patch(ctx context.Context, tripID string, patch models.TripPatch) (*models.Trip, error)
	ApplyTelemetry(ctx context.Context, tripID string, tele models.TripTelemetry) error
	AdvanceToInTransit(ctx context.Context, tripID string) (bool, error)
}

// LocationCollection defines the interface for the append-only location
// history.
type LocationCollection interface {
	Append(ctx context.Context, sample models.LocationSample) error
	ListByTrip(ctx context.Context, tripID string, limit int64) ([]models.LocationSample, error)
}

// TruckLocationCollection defines the interface for the per-truck
// current-position document.
type TruckLocationCollection interface {
	Upsert(ctx context.Context, loc models.TruckLocation) error
	Get(ctx context.Context, truckID string) (*models.TruckLocation, error)
}

// ShareCollection defines the interface for trip share codes.
type ShareCollection interface {
	Upsert(ctx context.Context, share models.TripShare) error
	FindByOTP(ctx context.Context, otp string) (*models.TripShare, error)
}
