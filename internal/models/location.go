package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationSample is one append-only history row of a trip's position.
type LocationSample struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TripID string             `bson:"trip_id" json:"trip_id"`
	Lat    float64            `bson:"lat" json:"lat"`
	Lng    float64            `bson:"lng" json:"lng"`
	TS     time.Time          `bson:"ts" json:"ts"`
	Speed  *float64           `bson:"speed,omitempty" json:"speed,omitempty"`
	Driver string             `bson:"driver,omitempty" json:"driver,omitempty"`
}

// LocationUpdate is the driver-facing payload of a position report.
// Lat and Lng are pointers so missing coordinates can be rejected.
type LocationUpdate struct {
	Lat   *float64   `json:"lat"`
	Lng   *float64   `json:"lng"`
	TS    *time.Time `json:"ts"`
	Speed *float64   `json:"speed"`
}

// TruckLocation is the single current-position document kept per truck,
// overwritten on every report.
type TruckLocation struct {
	TruckID string    `bson:"truck_id" json:"truck_id"`
	Lat     float64   `bson:"lat" json:"lat"`
	Lng     float64   `bson:"lng" json:"lng"`
	Speed   *float64  `bson:"speed,omitempty" json:"speed,omitempty"`
	TS      time.Time `bson:"ts" json:"ts"`
}

// LocationEvent is the payload pushed to live observers after a sample
// is persisted.
type LocationEvent struct {
	TripID       string     `json:"trip_id"`
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Speed        *float64   `json:"speed,omitempty"`
	TS           time.Time  `json:"ts"`
	Status       TripStatus `json:"status"`
	DelayMinutes *int       `json:"delay_minutes,omitempty"`
	DelayColor   string     `json:"delay_color,omitempty"`
}
