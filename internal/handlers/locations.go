package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/ingest"
	"github.com/windsorlogistics/truck-tracker/internal/middleware"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// LocationHandler handles driver position reports and current-position
// reads.
type LocationHandler struct {
	pipeline  *ingest.Pipeline
	truckLocs db.TruckLocationCollection
}

// NewLocationHandler creates a location handler.
func NewLocationHandler(pipeline *ingest.Pipeline, truckLocs db.TruckLocationCollection) *LocationHandler {
	return &LocationHandler{pipeline: pipeline, truckLocs: truckLocs}
}

// PostTripLocation ingests one position report for a trip.
func (h *LocationHandler) PostTripLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var loc models.LocationUpdate
	if !decodeBody(w, r, &loc) {
		return
	}

	event, err := h.pipeline.Ingest(r.Context(), chi.URLParam(r, "trip_id"), claims.Subject, loc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// PostTruckLocation overwrites a truck's current position.
func (h *LocationHandler) PostTruckLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var loc models.LocationUpdate
	if !decodeBody(w, r, &loc) {
		return
	}

	current, err := h.pipeline.IngestTruck(r.Context(), chi.URLParam(r, "truck_id"), claims.Subject, loc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// GetTruckLocation returns a truck's last reported position.
func (h *LocationHandler) GetTruckLocation(w http.ResponseWriter, r *http.Request) {
	current, err := h.truckLocs.Get(r.Context(), chi.URLParam(r, "truck_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}
