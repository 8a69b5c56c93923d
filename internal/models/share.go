package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripShare is the single live share code of a trip. Issuing a new code
// overwrites the previous one.
type TripShare struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TripID    string             `bson:"trip_id" json:"trip_id"`
	OTP       string             `bson:"otp" json:"otp"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
