// Package share issues and redeems short-lived numeric codes granting
// public read access to one trip.
package share

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// TTL is how long an issued code stays redeemable.
const TTL = 15 * time.Minute

var (
	ErrNotFound = errors.New("share not found")
	ErrExpired  = errors.New("share code expired")
)

// Service issues and redeems trip share codes.
type Service struct {
	trips  db.TripCollection
	shares db.ShareCollection
	now    func() time.Time
}

// NewService creates a share service.
func NewService(trips db.TripCollection, shares db.ShareCollection) *Service {
	return &Service{trips: trips, shares: shares, now: time.Now}
}

// Issue generates a fresh 6-digit code for the trip, valid for TTL.
// Reissuing overwrites the trip's previous code. Codes are not globally
// unique across trips; redemption is a plain code lookup.
func (s *Service) Issue(ctx context.Context, tripID string) (*models.TripShare, error) {
	if _, err := s.trips.FindByTripID(ctx, tripID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sh := models.TripShare{
		TripID:    tripID,
		OTP:       otp,
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
	}
	if err := s.shares.Upsert(ctx, sh); err != nil {
		return nil, err
	}

	log.WithField("trip_id", tripID).Info("issued share code")
	return &sh, nil
}

// Redeem resolves a code to its trip id. A request at exactly the expiry
// instant is still valid; any instant after is not.
func (s *Service) Redeem(ctx context.Context, otp string) (*models.TripShare, error) {
	sh, err := s.shares.FindByOTP(ctx, otp)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.now().After(sh.ExpiresAt) {
		return nil, ErrExpired
	}
	return sh, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
