// Package booking claims trucks for customers and creates the paired
// booking and trip records.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/events"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

var (
	// ErrTruckUnavailable means the truck was not available at
	// reservation time: already reserved, out of service, or nonexistent.
	// The caller must pick another truck; nothing is retried.
	ErrTruckUnavailable = errors.New("truck not available")
)

// Service performs the booking flow: atomic truck reservation followed by
// creation of the booking/trip pair.
type Service struct {
	trucks   db.TruckCollection
	bookings db.BookingCollection
	trips    db.TripCollection
	events   *events.Publisher
	now      func() time.Time
}

// NewService creates a booking service.
func NewService(trucks db.TruckCollection, bookings db.BookingCollection, trips db.TripCollection, publisher *events.Publisher) *Service {
	return &Service{
		trucks:   trucks,
		bookings: bookings,
		trips:    trips,
		events:   publisher,
		now:      time.Now,
	}
}

// Book reserves the requested truck and creates the booking/trip pair.
// The reservation is a single conditional store operation, so under any
// number of concurrent calls for the same truck exactly one succeeds and
// the rest get ErrTruckUnavailable.
func (s *Service) Book(ctx context.Context, customerID string, req models.BookingRequest) (*models.Booking, *models.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	truck, err := s.trucks.Reserve(ctx, req.TruckID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, ErrTruckUnavailable
		}
		return nil, nil, fmt.Errorf("reserve truck: %w", err)
	}

	bookingID := "bk-" + uuid.New().String()
	tripID := "tr-" + uuid.New().String()
	now := s.now()

	booking := models.Booking{
		BookingID:      bookingID,
		TripID:         tripID,
		TruckID:        truck.TruckID,
		CustomerName:   req.CustomerName,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		BookingDate:    req.BookingDate,
		BookingTime:    req.BookingTime,
		Status:         "confirmed",
		CreatedAt:      now,
	}
	if err := s.bookings.Insert(ctx, booking); err != nil {
		s.release(ctx, truck.TruckID)
		return nil, nil, fmt.Errorf("insert booking: %w", err)
	}

	trip := models.Trip{
		TripID:     tripID,
		BookingID:  bookingID,
		OwnerID:    truck.OwnerID,
		TruckID:    truck.TruckID,
		CustomerID: customerID,
		Status:     models.TripStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.trips.Insert(ctx, trip); err != nil {
		// the two writes are not one transaction; undo the booking and
		// the reservation so no orphan pair is left behind
		if delErr := s.bookings.Delete(ctx, bookingID); delErr != nil {
			log.WithField("booking_id", bookingID).WithError(delErr).Error("failed to undo booking after trip write failure")
		}
		s.release(ctx, truck.TruckID)
		return nil, nil, fmt.Errorf("insert trip: %w", err)
	}

	log.WithFields(log.Fields{
		"booking_id": bookingID,
		"trip_id":    tripID,
		"truck_id":   truck.TruckID,
	}).Info("booking created")

	if s.events.Enabled() {
		s.events.Publish(events.TopicBookingCreated, bookingID, struct {
			BookingID string `json:"booking_id"`
			TripID    string `json:"trip_id"`
			TruckID   string `json:"truck_id"`
			OwnerID   string `json:"owner_id"`
			CreatedAt string `json:"created_at"`
		}{bookingID, tripID, truck.TruckID, truck.OwnerID, now.Format(time.RFC3339)})
	}

	return &booking, &trip, nil
}

func (s *Service) release(ctx context.Context, truckID string) {
	if err := s.trucks.Release(ctx, truckID); err != nil {
		log.WithField("truck_id", truckID).WithError(err).Error("failed to release truck after booking failure")
	}
}
