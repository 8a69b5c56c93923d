package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/windsorlogistics/truck-tracker/internal/middleware"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Auth      *AuthHandler
	Trucks    *TruckHandler
	Bookings  *BookingHandler
	Trips     *TripHandler
	Locations *LocationHandler
	WS        *WSHandler
	AuthMW    *middleware.AuthMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

// NewRouter mounts the full API surface.
func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(d.AuthMW.Authenticate)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", d.Auth.Login)
		r.Post("/register", d.Auth.Register)
		r.Get("/profile", d.Auth.GetProfile)
	})

	ownerOnly := d.AuthMW.RequireRole(models.RoleOwner)
	driverOnly := d.AuthMW.RequireRole(models.RoleDriver)

	r.Route("/api/owners/me/trucks", func(r chi.Router) {
		r.Use(ownerOnly)
		r.Post("/", d.Trucks.Create)
		r.Get("/", d.Trucks.List)
	})

	r.Route("/api/trucks", func(r chi.Router) {
		r.Get("/available", d.Trucks.ListAvailable)
		r.With(ownerOnly).Patch("/{truck_id}", d.Trucks.Patch)
		r.With(driverOnly, d.RateLimit.RateLimit(600, 60)).
			Post("/{truck_id}/location", d.Locations.PostTruckLocation)
		r.Get("/{truck_id}/location", d.Locations.GetTruckLocation)
	})

	r.Route("/api/bookings", func(r chi.Router) {
		r.With(d.AuthMW.RequireRole(models.RoleCustomer)).Post("/", d.Bookings.Create)
		r.With(ownerOnly).Get("/", d.Bookings.List)
	})

	r.Route("/api/trips", func(r chi.Router) {
		r.With(ownerOnly).Post("/", d.Trips.Create)
		r.With(ownerOnly).Get("/", d.Trips.List)
		r.Get("/{trip_id}", d.Trips.Get)
		r.With(ownerOnly).Patch("/{trip_id}", d.Trips.Patch)
		r.Get("/{trip_id}/locations", d.Trips.History)
		r.With(driverOnly, d.RateLimit.RateLimit(600, 60)).
			Post("/{trip_id}/location", d.Locations.PostTripLocation)
		r.With(ownerOnly).Post("/{trip_id}/share-otp", d.Trips.IssueShare)
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/resolve-otp", d.Trips.ResolveShare)
		r.Get("/trips/{trip_id}", d.Trips.PublicView)
	})

	r.Get("/ws/trips/{trip_id}", d.WS.TripSocket)
	r.Get("/ws/trucks/{truck_id}", d.WS.TruckSocket)

	return r
}
