package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJitterLocation_StaysClose(t *testing.T) {
	base := Location{Lat: 42.3149, Lng: -83.0364}
	for i := 0; i < 50; i++ {
		loc := jitterLocation(base, 500)
		if d := haversineKm(base, loc); d > 1.0 {
			t.Errorf("jittered point %f km away, expected under 1 km", d)
		}
	}
}

func TestHaversineKm(t *testing.T) {
	windsor := Location{Lat: 42.3149, Lng: -83.0364}
	detroit := Location{Lat: 42.3314, Lng: -83.0458}

	d := haversineKm(windsor, detroit)
	if d < 1 || d > 5 {
		t.Errorf("Windsor-Detroit distance out of range: %f km", d)
	}
	if haversineKm(windsor, windsor) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestStepAlongRoute_MovesForward(t *testing.T) {
	start := Location{Lat: 42.0, Lng: -83.0}
	end := Location{Lat: 43.0, Lng: -83.0}
	s := &TripState{
		TripID:   "tr-1",
		Position: start,
		SpeedKmh: 60,
		Route:    &TripRoute{Points: []Location{start, end}},
	}

	stepAlongRoute(s, 60) // one minute at 60 km/h ≈ 1 km
	moved := haversineKm(start, s.Position)
	if moved < 0.5 || moved > 2 {
		t.Errorf("expected roughly 1 km of progress, got %f km", moved)
	}
	if s.Position.Lat <= start.Lat {
		t.Error("expected movement toward the route end")
	}
}

func TestTripIDsFromEnv(t *testing.T) {
	t.Setenv("SIM_TRIP_IDS", " tr-1, tr-2 ,,tr-3")
	ids := tripIDsFromEnv()
	if len(ids) != 3 {
		t.Fatalf("expected 3 trip ids, got %d: %v", len(ids), ids)
	}
	if ids[0] != "tr-1" || ids[1] != "tr-2" || ids[2] != "tr-3" {
		t.Errorf("unexpected ids: %v", ids)
	}

	t.Setenv("SIM_TRIP_IDS", "")
	if ids := tripIDsFromEnv(); len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestSendReport(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotReport LocationReport
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReport)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	authToken = "test-token"
	defer func() { authToken = "" }()

	s := &TripState{
		TripID:   "tr-1",
		Position: Location{Lat: 42.3, Lng: -83.0},
		SpeedKmh: 55,
	}
	sendReport(server.URL, s)

	if gotPath != "/trips/tr-1/location" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header: %s", gotAuth)
	}
	if gotReport.Lat != 42.3 || gotReport.Lng != -83.0 {
		t.Errorf("unexpected report coordinates: %+v", gotReport)
	}
}

func TestSendReport_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := &TripState{TripID: "tr-1", Position: Location{Lat: 42.3, Lng: -83.0}}
	// must not panic on a failed send
	sendReport(server.URL, s)
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "driver1" || req["password"] != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "issued-token"})
	}))
	defer server.Close()

	token, err := login(server.URL, "driver1", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "issued-token" {
		t.Errorf("unexpected token: %s", token)
	}

	if _, err := login(server.URL, "driver1", "wrong"); err == nil {
		t.Error("expected error for bad credentials")
	}
}
