package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusInTransit TripStatus = "in_transit"
	TripStatusDelayed   TripStatus = "delayed"
	TripStatusDelivered TripStatus = "delivered"
	TripStatusCancelled TripStatus = "cancelled"
)

// LastLocation is the denormalized most-recent position stored on a trip.
type LastLocation struct {
	Lat   float64   `bson:"lat" json:"lat"`
	Lng   float64   `bson:"lng" json:"lng"`
	Speed *float64  `bson:"speed,omitempty" json:"speed,omitempty"`
	TS    time.Time `bson:"ts" json:"ts"`
}

// Trip represents one booked journey of a truck. It is created as a pair
// with its Booking and carries the denormalized telemetry summary served
// on the public read path.
type Trip struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	TripID       string             `json:"trip_id" bson:"trip_id"`
	BookingID    string             `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	OwnerID      string             `json:"owner_id,omitempty" bson:"owner_id,omitempty"`
	TruckID      string             `json:"truck_id,omitempty" bson:"truck_id,omitempty"`
	CustomerID   string             `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	DriverID     string             `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	Status       TripStatus         `json:"status" bson:"status"`
	PlannedETA   *time.Time         `json:"planned_eta,omitempty" bson:"planned_eta,omitempty"`
	LastLocation *LastLocation      `json:"last_location,omitempty" bson:"last_location,omitempty"`
	LastUpdate   *time.Time         `json:"last_update,omitempty" bson:"last_update,omitempty"`
	DelayMinutes *int               `json:"delay_minutes,omitempty" bson:"delay_minutes,omitempty"`
	DelayColor   string             `json:"delay_color,omitempty" bson:"delay_color,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// TripCreateRequest is the owner-facing payload for creating a trip
// directly, outside the booking flow.
type TripCreateRequest struct {
	TripID     string     `json:"trip_id"`
	CustomerID string     `json:"customer_id"`
	DriverID   string     `json:"driver_id"`
	TruckID    string     `json:"truck_id"`
	PlannedETA *time.Time `json:"planned_eta"`
	Status     TripStatus `json:"status"`
}

// TripPatch carries the optional fields of a trip update.
// A nil field is left untouched.
type TripPatch struct {
	Status     *TripStatus `json:"status"`
	PlannedETA *time.Time  `json:"planned_eta"`
	DriverID   *string     `json:"driver_id"`
	CustomerID *string     `json:"customer_id"`
}

// IsEmpty reports whether the patch carries no fields.
func (p TripPatch) IsEmpty() bool {
	return p.Status == nil && p.PlannedETA == nil && p.DriverID == nil && p.CustomerID == nil
}

// TripTelemetry is the summary written onto a trip for each accepted
// location sample.
type TripTelemetry struct {
	LastLocation LastLocation
	LastUpdate   time.Time
	DelayMinutes *int
	DelayColor   string
}

// PublicTrip is the filtered projection exposed to share-code readers.
type PublicTrip struct {
	TripID       string        `json:"trip_id"`
	Status       TripStatus    `json:"status"`
	PlannedETA   *time.Time    `json:"planned_eta,omitempty"`
	CustomerID   string        `json:"customer_id,omitempty"`
	DriverID     string        `json:"driver_id,omitempty"`
	TruckID      string        `json:"truck_id,omitempty"`
	LastLocation *LastLocation `json:"last_location,omitempty"`
	LastUpdate   *time.Time    `json:"last_update,omitempty"`
	DelayMinutes *int          `json:"delay_minutes,omitempty"`
	DelayColor   string        `json:"delay_color,omitempty"`
}

// Public returns the share-code reader view of the trip.
func (t *Trip) Public() PublicTrip {
	return PublicTrip{
		TripID:       t.TripID,
		Status:       t.Status,
		PlannedETA:   t.PlannedETA,
		CustomerID:   t.CustomerID,
		DriverID:     t.DriverID,
		TruckID:      t.TruckID,
		LastLocation: t.LastLocation,
		LastUpdate:   t.LastUpdate,
		DelayMinutes: t.DelayMinutes,
		DelayColor:   t.DelayColor,
	}
}

// IsValidTripStatus reports whether s is a known trip status.
func IsValidTripStatus(s TripStatus) bool {
	switch s {
	case TripStatusScheduled, TripStatusInTransit, TripStatusDelayed, TripStatusDelivered, TripStatusCancelled:
		return true
	default:
		return false
	}
}
