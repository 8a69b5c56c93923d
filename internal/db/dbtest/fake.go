// Package dbtest provides in-memory implementations of the db collection
// interfaces for unit tests.
package dbtest

import (
	"context"
	"sync"
	"time"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// FakeTrucks is an in-memory db.TruckCollection. Reserve performs the
// same compare-and-swap the Mongo implementation does, under a mutex.
type FakeTrucks struct {
	mu     sync.Mutex
	Trucks map[string]*models.Truck
}

func NewFakeTrucks() *FakeTrucks {
	return &FakeTrucks{Trucks: make(map[string]*models.Truck)}
}

func (f *FakeTrucks) Insert(_ context.Context, truck models.Truck) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.Trucks {
		if t.OwnerID == truck.OwnerID && t.TruckID == truck.TruckID {
			return db.ErrConflict
		}
	}
	truck.CreatedAt = time.Now()
	truck.UpdatedAt = truck.CreatedAt
	f.Trucks[truck.TruckID] = &truck
	return nil
}

func (f *FakeTrucks) FindByTruckID(_ context.Context, truckID string) (*models.Truck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trucks[truckID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *FakeTrucks) ListByOwner(_ context.Context, ownerID string) ([]models.Truck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Truck
	for _, t := range f.Trucks {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *FakeTrucks) ListByStatus(_ context.Context, status models.TruckStatus) ([]models.Truck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Truck
	for _, t := range f.Trucks {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *FakeTrucks) Patch(_ context.Context, ownerID, truckID string, patch models.TruckPatch) (*models.Truck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trucks[truckID]
	if !ok || t.OwnerID != ownerID {
		return nil, db.ErrNotFound
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (f *FakeTrucks) Reserve(_ context.Context, truckID string) (*models.Truck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trucks[truckID]
	if !ok || t.Status != models.TruckStatusAvailable {
		return nil, db.ErrNotFound
	}
	t.Status = models.TruckStatusBooked
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (f *FakeTrucks) Release(_ context.Context, truckID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trucks[truckID]
	if !ok || t.Status != models.TruckStatusBooked {
		return db.ErrNotFound
	}
	t.Status = models.TruckStatusAvailable
	return nil
}

// FakeBookings is an in-memory db.BookingCollection.
type FakeBookings struct {
	mu       sync.Mutex
	Bookings map[string]*models.Booking

	// InsertErr, when set, makes Insert fail.
	InsertErr error
}

func NewFakeBookings() *FakeBookings {
	return &FakeBookings{Bookings: make(map[string]*models.Booking)}
}

func (f *FakeBookings) Insert(_ context.Context, booking models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return f.InsertErr
	}
	if _, ok := f.Bookings[booking.BookingID]; ok {
		return db.ErrConflict
	}
	booking.CreatedAt = time.Now()
	f.Bookings[booking.BookingID] = &booking
	return nil
}

func (f *FakeBookings) Delete(_ context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Bookings[bookingID]; !ok {
		return db.ErrNotFound
	}
	delete(f.Bookings, bookingID)
	return nil
}

func (f *FakeBookings) List(_ context.Context) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.Bookings {
		out = append(out, *b)
	}
	return out, nil
}

// FakeTrips is an in-memory db.TripCollection.
type FakeTrips struct {
	mu    sync.Mutex
	Trips map[string]*models.Trip

	// InsertErr, when set, makes Insert fail. Lets tests exercise the
	// booking compensation path.
	InsertErr error
}

func NewFakeTrips() *FakeTrips {
	return &FakeTrips{Trips: make(map[string]*models.Trip)}
}

func (f *FakeTrips) Insert(_ context.Context, trip models.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return f.InsertErr
	}
	if _, ok := f.Trips[trip.TripID]; ok {
		return db.ErrConflict
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	f.Trips[trip.TripID] = &trip
	return nil
}

func (f *FakeTrips) Upsert(_ context.Context, trip models.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip.UpdatedAt = time.Now()
	if existing, ok := f.Trips[trip.TripID]; ok {
		trip.CreatedAt = existing.CreatedAt
	} else if trip.CreatedAt.IsZero() {
		trip.CreatedAt = trip.UpdatedAt
	}
	f.Trips[trip.TripID] = &trip
	return nil
}

func (f *FakeTrips) FindByTripID(_ context.Context, tripID string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trips[tripID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *FakeTrips) ListByOwner(_ context.Context, ownerID string) ([]models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Trip
	for _, t := range f.Trips {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *FakeTrips) Patch(_ context.Context, tripID string, patch models.TripPatch) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trips[tripID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.PlannedETA != nil {
		eta := *patch.PlannedETA
		t.PlannedETA = &eta
	}
	if patch.DriverID != nil {
		t.DriverID = *patch.DriverID
	}
	if patch.CustomerID != nil {
		t.CustomerID = *patch.CustomerID
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (f *FakeTrips) ApplyTelemetry(_ context.Context, tripID string, tele models.TripTelemetry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trips[tripID]
	if !ok {
		return db.ErrNotFound
	}
	loc := tele.LastLocation
	t.LastLocation = &loc
	ts := tele.LastUpdate
	t.LastUpdate = &ts
	t.DelayMinutes = tele.DelayMinutes
	t.DelayColor = tele.DelayColor
	t.UpdatedAt = tele.LastUpdate
	return nil
}

func (f *FakeTrips) AdvanceToInTransit(_ context.Context, tripID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Trips[tripID]
	if !ok {
		return false, nil
	}
	if t.Status != models.TripStatusScheduled {
		return false, nil
	}
	t.Status = models.TripStatusInTransit
	t.UpdatedAt = time.Now()
	return true, nil
}

// FakeLocations is an in-memory db.LocationCollection.
type FakeLocations struct {
	mu      sync.Mutex
	Samples []models.LocationSample
}

func NewFakeLocations() *FakeLocations {
	return &FakeLocations{}
}

func (f *FakeLocations) Append(_ context.Context, sample models.LocationSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = append(f.Samples, sample)
	return nil
}

func (f *FakeLocations) ListByTrip(_ context.Context, tripID string, limit int64) ([]models.LocationSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LocationSample
	for _, s := range f.Samples {
		if s.TripID == tripID {
			out = append(out, s)
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

// FakeTruckLocations is an in-memory db.TruckLocationCollection.
type FakeTruckLocations struct {
	mu        sync.Mutex
	Locations map[string]*models.TruckLocation
}

func NewFakeTruckLocations() *FakeTruckLocations {
	return &FakeTruckLocations{Locations: make(map[string]*models.TruckLocation)}
}

func (f *FakeTruckLocations) Upsert(_ context.Context, loc models.TruckLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Locations[loc.TruckID] = &loc
	return nil
}

func (f *FakeTruckLocations) Get(_ context.Context, truckID string) (*models.TruckLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loc, ok := f.Locations[truckID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

// FakeShares is an in-memory db.ShareCollection.
type FakeShares struct {
	mu     sync.Mutex
	Shares map[string]*models.TripShare // keyed by trip id
}

func NewFakeShares() *FakeShares {
	return &FakeShares{Shares: make(map[string]*models.TripShare)}
}

func (f *FakeShares) Upsert(_ context.Context, share models.TripShare) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Shares[share.TripID] = &share
	return nil
}

func (f *FakeShares) FindByOTP(_ context.Context, otp string) (*models.TripShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.Shares {
		if s.OTP == otp {
			cp := *s
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}
