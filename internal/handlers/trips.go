package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/middleware"
	"github.com/windsorlogistics/truck-tracker/internal/models"
	"github.com/windsorlogistics/truck-tracker/internal/share"
	"github.com/windsorlogistics/truck-tracker/internal/trips"
)

const defaultHistoryLimit = 100

// TripHandler handles trip lifecycle, history, and share-code endpoints.
type TripHandler struct {
	service   *trips.Service
	shares    *share.Service
	locations db.LocationCollection
}

// NewTripHandler creates a trip handler.
func NewTripHandler(service *trips.Service, shares *share.Service, locations db.LocationCollection) *TripHandler {
	return &TripHandler{service: service, shares: shares, locations: locations}
}

// Create upserts an owner-defined trip.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req models.TripCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	trip, err := h.service.Create(r.Context(), claims.Subject, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// List returns the calling owner's trips.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	list, err := h.service.List(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Trip{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get returns one trip.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.service.Get(r.Context(), chi.URLParam(r, "trip_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Patch applies the provided fields to a trip, leaving the rest untouched.
func (h *TripHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var patch models.TripPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	trip, err := h.service.Patch(r.Context(), chi.URLParam(r, "trip_id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// History returns the most recent location samples of a trip.
func (h *TripHandler) History(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "trip_id")
	if _, err := h.service.Get(r.Context(), tripID); err != nil {
		writeServiceError(w, err)
		return
	}

	limit := int64(defaultHistoryLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	samples, err := h.locations.ListByTrip(r.Context(), tripID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if samples == nil {
		samples = []models.LocationSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

// IssueShare mints a short-lived public share code for a trip.
func (h *TripHandler) IssueShare(w http.ResponseWriter, r *http.Request) {
	sh, err := h.shares.Issue(r.Context(), chi.URLParam(r, "trip_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"otp":        sh.OTP,
		"expires_at": sh.ExpiresAt,
	})
}

// ResolveShare resolves a share code to its trip id. Unknown codes are 404
// and expired ones 410, so a client can tell a typo from a stale link.
func (h *TripHandler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	otp := r.URL.Query().Get("otp")
	if otp == "" {
		writeError(w, http.StatusBadRequest, "otp is required")
		return
	}

	sh, err := h.shares.Redeem(r.Context(), otp)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trip_id":    sh.TripID,
		"expires_at": sh.ExpiresAt,
	})
}

// PublicView serves the filtered trip projection for share-code readers.
func (h *TripHandler) PublicView(w http.ResponseWriter, r *http.Request) {
	pub, err := h.service.PublicView(r.Context(), chi.URLParam(r, "trip_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}
