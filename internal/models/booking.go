package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking records a customer claiming a truck. It is created exactly once,
// immediately after a successful reservation, and never mutated afterwards.
type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BookingID      string             `bson:"booking_id" json:"booking_id"`
	TripID         string             `bson:"trip_id" json:"trip_id"`
	TruckID        string             `bson:"truck_id" json:"truck_id"`
	CustomerName   string             `bson:"customer_name" json:"customer_name"`
	PickupLocation string             `bson:"pickup_location" json:"pickup_location"`
	DropLocation   string             `bson:"drop_location" json:"drop_location"`
	BookingDate    string             `bson:"booking_date" json:"booking_date"`
	BookingTime    string             `bson:"booking_time" json:"booking_time"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// BookingRequest is the customer-facing payload for booking a truck.
type BookingRequest struct {
	TruckID        string `json:"truck_id"`
	CustomerName   string `json:"customer_name"`
	PickupLocation string `json:"pickup_location"`
	DropLocation   string `json:"drop_location"`
	BookingDate    string `json:"booking_date"`
	BookingTime    string `json:"booking_time"`
}

// Validate checks the required booking fields.
func (r *BookingRequest) Validate() error {
	r.TruckID = strings.TrimSpace(r.TruckID)
	if r.TruckID == "" {
		return ErrMissingField("truck_id")
	}
	if strings.TrimSpace(r.PickupLocation) == "" {
		return ErrMissingField("pickup_location")
	}
	if strings.TrimSpace(r.DropLocation) == "" {
		return ErrMissingField("drop_location")
	}
	return nil
}
