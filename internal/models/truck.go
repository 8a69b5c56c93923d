package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TruckType classifies the vehicle body.
type TruckType string

const (
	TruckTypePickup TruckType = "pickup"
	TruckTypeBox    TruckType = "box"
	TruckTypeSemi   TruckType = "semi"
)

// TruckStatus is the reservation state of a truck.
type TruckStatus string

const (
	TruckStatusAvailable    TruckStatus = "available"
	TruckStatusBooked       TruckStatus = "booked"
	TruckStatusOutOfService TruckStatus = "out_of_service"
	TruckStatusUnavailable  TruckStatus = "unavailable"
)

// Truck represents a fleet vehicle registered by an owner.
// (owner_id, truck_id) is unique; status only changes through the
// reservation path or an explicit owner patch.
type Truck struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TruckID   string             `bson:"truck_id" json:"truck_id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Type      TruckType          `bson:"type" json:"type"`
	Status    TruckStatus        `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// TruckCreateRequest is the owner-facing payload for registering a truck.
type TruckCreateRequest struct {
	TruckID string      `json:"truck_id"`
	Type    TruckType   `json:"type"`
	Status  TruckStatus `json:"status"`
}

// TruckPatch carries the optional fields of a truck update.
// Nil means leave the field untouched.
type TruckPatch struct {
	Status *TruckStatus `json:"status"`
}

// Normalize trims the truck id and defaults status to available.
func (r *TruckCreateRequest) Normalize() {
	r.TruckID = strings.TrimSpace(r.TruckID)
	if r.Status == "" {
		r.Status = TruckStatusAvailable
	}
}

// IsValidTruckType reports whether t is a known truck type.
func IsValidTruckType(t TruckType) bool {
	switch t {
	case TruckTypePickup, TruckTypeBox, TruckTypeSemi:
		return true
	default:
		return false
	}
}

// IsValidTruckStatus reports whether s is a known truck status.
func IsValidTruckStatus(s TruckStatus) bool {
	switch s {
	case TruckStatusAvailable, TruckStatusBooked, TruckStatusOutOfService, TruckStatusUnavailable:
		return true
	default:
		return false
	}
}
