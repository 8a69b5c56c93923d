// Package trips manages the trip lifecycle outside of telemetry: owner
// creation, partial patches, listing, and the public read view.
package trips

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

var ErrNotFound = errors.New("trip not found")

// Service contains trip lifecycle logic.
type Service struct {
	trips db.TripCollection
}

// NewService creates a trip service.
func NewService(trips db.TripCollection) *Service {
	return &Service{trips: trips}
}

// Create writes an owner-defined trip keyed by trip_id. Resubmitting the
// same trip id overwrites the earlier definition.
func (s *Service) Create(ctx context.Context, ownerID string, req models.TripCreateRequest) (*models.Trip, error) {
	req.TripID = strings.TrimSpace(req.TripID)
	if req.TripID == "" {
		return nil, models.ErrMissingField("trip_id")
	}
	status := req.Status
	if status == "" {
		status = models.TripStatusScheduled
	}
	if !models.IsValidTripStatus(status) {
		return nil, models.ErrInvalidField("status")
	}

	trip := models.Trip{
		TripID:     req.TripID,
		OwnerID:    ownerID,
		TruckID:    req.TruckID,
		CustomerID: req.CustomerID,
		DriverID:   req.DriverID,
		PlannedETA: req.PlannedETA,
		Status:     status,
		CreatedAt:  time.Now(),
	}
	if err := s.trips.Upsert(ctx, trip); err != nil {
		return nil, err
	}

	log.WithField("trip_id", trip.TripID).Info("trip created")
	return s.Get(ctx, trip.TripID)
}

// Get fetches a trip by id.
func (s *Service) Get(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.trips.FindByTripID(ctx, tripID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	return trip, err
}

// List returns the owner's trips.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Trip, error) {
	return s.trips.ListByOwner(ctx, ownerID)
}

// Patch applies the non-nil fields of patch to the trip. Omitted fields
// are left untouched.
func (s *Service) Patch(ctx context.Context, tripID string, patch models.TripPatch) (*models.Trip, error) {
	if patch.Status != nil && !models.IsValidTripStatus(*patch.Status) {
		return nil, models.ErrInvalidField("status")
	}

	trip, err := s.trips.Patch(ctx, tripID, patch)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	return trip, err
}

// PublicView returns the filtered projection served to share-code readers.
func (s *Service) PublicView(ctx context.Context, tripID string) (*models.PublicTrip, error) {
	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	pub := trip.Public()
	return &pub, nil
}
