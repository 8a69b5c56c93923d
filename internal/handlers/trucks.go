package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/middleware"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// TruckHandler handles the owner-facing truck fleet endpoints.
type TruckHandler struct {
	trucks db.TruckCollection
}

// NewTruckHandler creates a truck handler.
func NewTruckHandler(trucks db.TruckCollection) *TruckHandler {
	return &TruckHandler{trucks: trucks}
}

// Create registers a truck under the calling owner.
func (h *TruckHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req models.TruckCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Normalize()

	if req.TruckID == "" {
		writeError(w, http.StatusBadRequest, "truck_id is required")
		return
	}
	if !models.IsValidTruckType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid truck type")
		return
	}
	if !models.IsValidTruckStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid truck status")
		return
	}

	truck := models.Truck{
		TruckID:   req.TruckID,
		OwnerID:   claims.Subject,
		Type:      req.Type,
		Status:    req.Status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.trucks.Insert(r.Context(), truck); err != nil {
		writeServiceError(w, err)
		return
	}

	log.WithFields(log.Fields{"truck_id": truck.TruckID, "owner_id": truck.OwnerID}).Info("truck registered")
	writeJSON(w, http.StatusCreated, truck)
}

// List returns the calling owner's trucks.
func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	trucks, err := h.trucks.ListByOwner(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if trucks == nil {
		trucks = []models.Truck{}
	}
	writeJSON(w, http.StatusOK, trucks)
}

// ListAvailable returns every truck currently open for booking.
func (h *TruckHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.trucks.ListByStatus(r.Context(), models.TruckStatusAvailable)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if trucks == nil {
		trucks = []models.Truck{}
	}
	writeJSON(w, http.StatusOK, trucks)
}

// Patch applies a partial update to one of the calling owner's trucks.
func (h *TruckHandler) Patch(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}
	truckID := chi.URLParam(r, "truck_id")

	var patch models.TruckPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Status != nil && !models.IsValidTruckStatus(*patch.Status) {
		writeError(w, http.StatusBadRequest, "invalid truck status")
		return
	}

	truck, err := h.trucks.Patch(r.Context(), claims.Subject, truckID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, truck)
}
