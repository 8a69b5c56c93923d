package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/realtime"
)

// WSHandler upgrades observer connections and parks them on the hub.
type WSHandler struct {
	hub       *realtime.Hub
	truckLocs db.TruckLocationCollection
	upgrader  websocket.Upgrader
}

// NewWSHandler creates a websocket handler.
func NewWSHandler(hub *realtime.Hub, truckLocs db.TruckLocationCollection) *WSHandler {
	return &WSHandler{
		hub:       hub,
		truckLocs: truckLocs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// TripSocket streams location events for one trip until the peer hangs up.
func (h *WSHandler) TripSocket(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "trip_id")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	sub := realtime.NewWSSubscriber(ws)
	h.hub.Subscribe(tripID, sub)
	defer func() {
		h.hub.Unsubscribe(tripID, sub)
		sub.Close()
	}()

	sub.ReadLoop()
}

// TruckSocket streams position updates for one truck. The last known
// position is sent immediately so a fresh observer is not blank until the
// next report.
func (h *WSHandler) TruckSocket(w http.ResponseWriter, r *http.Request) {
	truckID := chi.URLParam(r, "truck_id")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	sub := realtime.NewWSSubscriber(ws)

	if current, err := h.truckLocs.Get(r.Context(), truckID); err == nil {
		if err := sub.Send(current); err != nil {
			sub.Close()
			return
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		log.WithField("truck_id", truckID).WithError(err).Warn("failed to load current truck position")
	}

	h.hub.Subscribe(truckID, sub)
	defer func() {
		h.hub.Unsubscribe(truckID, sub)
		sub.Close()
	}()

	sub.ReadLoop()
}
