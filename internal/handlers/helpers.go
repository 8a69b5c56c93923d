package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/windsorlogistics/truck-tracker/internal/booking"
	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/ingest"
	"github.com/windsorlogistics/truck-tracker/internal/models"
	"github.com/windsorlogistics/truck-tracker/internal/share"
	"github.com/windsorlogistics/truck-tracker/internal/trips"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErr models.FieldError
	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrTruckUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, trips.ErrNotFound),
		errors.Is(err, ingest.ErrTripNotFound),
		errors.Is(err, share.ErrNotFound),
		errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, share.ErrExpired):
		writeError(w, http.StatusGone, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}
