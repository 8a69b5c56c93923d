// Package ingest validates, persists, classifies, and fans out incoming
// position reports.
package ingest

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/delay"
	"github.com/windsorlogistics/truck-tracker/internal/events"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

var ErrTripNotFound = errors.New("trip not found")

// Broadcaster is the fan-out surface the pipeline hands events to.
type Broadcaster interface {
	Broadcast(id string, message interface{})
}

// Pipeline processes one position report end to end: history append,
// delay classification, trip summary update, then broadcast. Persistence
// always happens before broadcast so observers never see state ahead of
// the store.
type Pipeline struct {
	trips     db.TripCollection
	locations db.LocationCollection
	truckLocs db.TruckLocationCollection
	hub       Broadcaster
	events    *events.Publisher
	now       func() time.Time
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(trips db.TripCollection, locations db.LocationCollection, truckLocs db.TruckLocationCollection, hub Broadcaster, publisher *events.Publisher) *Pipeline {
	return &Pipeline{
		trips:     trips,
		locations: locations,
		truckLocs: truckLocs,
		hub:       hub,
		events:    publisher,
		now:       time.Now,
	}
}

// Ingest processes one position report for a trip. The sample keeps its
// own timestamp when it carries one; lateness is always judged at the
// current instant, because the question is how late the arrival looks
// now, not when the sample was taken.
func (p *Pipeline) Ingest(ctx context.Context, tripID, driverID string, loc models.LocationUpdate) (*models.LocationEvent, error) {
	if loc.Lat == nil || loc.Lng == nil {
		return nil, models.ErrMissingField("lat/lng")
	}

	trip, err := p.trips.FindByTripID(ctx, tripID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	now := p.now()
	ts := now
	if loc.TS != nil {
		ts = *loc.TS
	}

	sample := models.LocationSample{
		TripID: tripID,
		Lat:    *loc.Lat,
		Lng:    *loc.Lng,
		TS:     ts,
		Speed:  loc.Speed,
		Driver: driverID,
	}
	if err := p.locations.Append(ctx, sample); err != nil {
		return nil, err
	}

	minutes, color := delay.Classify(trip.PlannedETA, now)

	tele := models.TripTelemetry{
		LastLocation: models.LastLocation{Lat: sample.Lat, Lng: sample.Lng, Speed: sample.Speed, TS: ts},
		LastUpdate:   now,
		DelayMinutes: minutes,
		DelayColor:   string(color),
	}
	if err := p.trips.ApplyTelemetry(ctx, tripID, tele); err != nil {
		return nil, err
	}

	status := trip.Status
	if status == models.TripStatusScheduled {
		advanced, err := p.trips.AdvanceToInTransit(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if advanced {
			status = models.TripStatusInTransit
			log.WithField("trip_id", tripID).Info("trip moved to in_transit on first location")
		} else if current, err := p.trips.FindByTripID(ctx, tripID); err == nil {
			// a concurrent writer moved the trip first; report its status
			status = current.Status
		}
	}

	event := &models.LocationEvent{
		TripID:       tripID,
		Lat:          sample.Lat,
		Lng:          sample.Lng,
		Speed:        sample.Speed,
		TS:           ts,
		Status:       status,
		DelayMinutes: minutes,
		DelayColor:   string(color),
	}

	// everything above is durable; observers only ever see stored state
	p.hub.Broadcast(tripID, event)

	if p.events.Enabled() {
		p.events.Publish(events.TopicTripLocation, tripID, event)
	}

	return event, nil
}

// IngestTruck overwrites a truck's current position and notifies its
// watchers. Truck positions have no trip context, so there is no history
// append and no delay classification.
func (p *Pipeline) IngestTruck(ctx context.Context, truckID, driverID string, loc models.LocationUpdate) (*models.TruckLocation, error) {
	if loc.Lat == nil || loc.Lng == nil {
		return nil, models.ErrMissingField("lat/lng")
	}

	now := p.now()
	ts := now
	if loc.TS != nil {
		ts = *loc.TS
	}

	current := models.TruckLocation{
		TruckID: truckID,
		Lat:     *loc.Lat,
		Lng:     *loc.Lng,
		Speed:   loc.Speed,
		TS:      ts,
	}
	if err := p.truckLocs.Upsert(ctx, current); err != nil {
		return nil, err
	}

	p.hub.Broadcast(truckID, &current)

	log.WithFields(log.Fields{"truck_id": truckID, "driver": driverID}).Debug("truck position updated")
	return &current, nil
}
