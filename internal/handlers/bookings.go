package handlers

import (
	"net/http"

	"github.com/windsorlogistics/truck-tracker/internal/booking"
	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/middleware"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// BookingHandler handles the customer booking flow.
type BookingHandler struct {
	service  *booking.Service
	bookings db.BookingCollection
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(service *booking.Service, bookings db.BookingCollection) *BookingHandler {
	return &BookingHandler{service: service, bookings: bookings}
}

// Create reserves a truck and creates the booking/trip pair. A truck that
// loses the reservation race comes back as 409.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req models.BookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	bk, trip, err := h.service.Book(r.Context(), claims.Subject, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"booking": bk,
		"trip":    trip,
	})
}

// List returns all bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
