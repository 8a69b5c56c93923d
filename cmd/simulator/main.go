// Command simulator drives the tracking API for demos: it logs in as a
// driver, walks each trip along a road route, and posts jittered position
// reports at a fixed interval.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationReport is the position payload posted per tick.
type LocationReport struct {
	Lat   float64   `json:"lat"`
	Lng   float64   `json:"lng"`
	Speed float64   `json:"speed"`
	TS    time.Time `json:"ts"`
}

// Cities for realistic routes
var cities = []Location{
	{Lat: 42.3149, Lng: -83.0364}, // Windsor
	{Lat: 42.3314, Lng: -83.0458}, // Detroit
	{Lat: 43.6532, Lng: -79.3832}, // Toronto
	{Lat: 41.8781, Lng: -87.6298}, // Chicago
	{Lat: 39.7684, Lng: -86.1581}, // Indianapolis
	{Lat: 41.4993, Lng: -81.6944}, // Cleveland
	{Lat: 43.0389, Lng: -87.9065}, // Milwaukee
	{Lat: 38.6270, Lng: -90.1994}, // St. Louis
	{Lat: 39.9612, Lng: -82.9988}, // Columbus
	{Lat: 40.4406, Lng: -79.9959}, // Pittsburgh
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, 500) // start close to roads
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func login(apiURL, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(apiURL+"/auth/login", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("empty token in login response")
	}
	return result.Token, nil
}

// --- Routing & movement ---

type TripRoute struct {
	Points    []Location
	SegIndex  int
	SegOffset float64 // km along current segment
}

type TripState struct {
	TripID   string
	Position Location
	SpeedKmh float64
	Route    *TripRoute
}

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b Location, t float64) Location {
	return Location{Lat: a.Lat + (b.Lat-a.Lat)*t, Lng: a.Lng + (b.Lng-a.Lng)*t}
}

func fetchOSRMRoute(start, end Location) ([]Location, error) {
	url := fmt.Sprintf("https://router.project-osrm.org/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson", start.Lng, start.Lat, end.Lng, end.Lat)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("osrm status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var obj struct {
		Routes []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if len(obj.Routes) == 0 || len(obj.Routes[0].Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("no route")
	}
	coords := obj.Routes[0].Geometry.Coordinates
	pts := make([]Location, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, Location{Lat: c[1], Lng: c[0]})
	}
	return pts, nil
}

func planNewRoute(s *TripState) {
	start := s.Position
	// pick far city
	var end Location
	for i := 0; i < 10; i++ {
		cand := cities[rand.Intn(len(cities))]
		if haversineKm(start, cand) > 50 {
			end = jitterLocation(cand, 500)
			break
		}
	}
	pts, err := fetchOSRMRoute(start, end)
	if err != nil {
		// fallback small jitter loop
		s.Route = &TripRoute{Points: []Location{start, jitterLocation(start, 2000)}, SegIndex: 0, SegOffset: 0}
		return
	}
	s.Route = &TripRoute{Points: pts, SegIndex: 0, SegOffset: 0}
}

func stepAlongRoute(s *TripState, tickSec float64) {
	if s.Route == nil || len(s.Route.Points) < 2 {
		planNewRoute(s)
	}
	remKm := s.SpeedKmh * (tickSec / 3600.0)
	for remKm > 0 && s.Route.SegIndex < len(s.Route.Points)-1 {
		a := s.Route.Points[s.Route.SegIndex]
		b := s.Route.Points[s.Route.SegIndex+1]
		segLen := haversineKm(a, b)
		leftOnSeg := segLen - s.Route.SegOffset
		if remKm >= leftOnSeg {
			// advance to next segment
			s.Position = b
			s.Route.SegIndex++
			s.Route.SegOffset = 0
			remKm -= leftOnSeg
			continue
		}
		// stay on current segment
		t := (s.Route.SegOffset + remKm) / segLen
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		s.Position = lerp(a, b, t)
		s.Route.SegOffset += remKm
		remKm = 0
	}
	// if reached end, plan new
	if s.Route.SegIndex >= len(s.Route.Points)-1 {
		planNewRoute(s)
	}
}

func sendReport(apiURL string, s *TripState) {
	report := LocationReport{
		Lat:   s.Position.Lat,
		Lng:   s.Position.Lng,
		Speed: s.SpeedKmh,
		TS:    time.Now(),
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.WithError(err).Error("Failed to marshal report")
		return
	}
	resp, err := authorizedPost(apiURL+"/trips/"+s.TripID+"/location", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to send report")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"trip_id": s.TripID, "status": resp.Status}).Info("Sent position")
}

func simulateTrip(apiURL string, s *TripState, interval time.Duration) {
	if s.Route == nil {
		planNewRoute(s)
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		// small speed noise
		s.SpeedKmh += (rand.Float64()*2 - 1) * 1.5
		if s.SpeedKmh < 15 {
			s.SpeedKmh = 15
		}
		if s.SpeedKmh > 90 {
			s.SpeedKmh = 90
		}

		stepAlongRoute(s, interval.Seconds())
		sendReport(apiURL, s)
	}
}

func tripIDsFromEnv() []string {
	raw := os.Getenv("SIM_TRIP_IDS")
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	// Either a ready token or driver credentials
	authToken = os.Getenv("SIM_AUTH_TOKEN")
	if authToken == "" {
		username := os.Getenv("SIM_USERNAME")
		password := os.Getenv("SIM_PASSWORD")
		if username == "" || password == "" {
			log.Fatal("Set SIM_AUTH_TOKEN or SIM_USERNAME/SIM_PASSWORD")
		}
		token, err := login(apiURL, username, password)
		if err != nil {
			log.WithError(err).Fatal("Driver login failed")
		}
		authToken = token
		log.WithField("username", username).Info("Logged in as driver")
	}

	tripIDs := tripIDsFromEnv()
	if len(tripIDs) == 0 {
		log.Fatal("SIM_TRIP_IDS is required (comma-separated trip ids)")
	}

	log.WithFields(log.Fields{
		"trips":    len(tripIDs),
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting trip simulation")

	for _, tripID := range tripIDs {
		state := &TripState{
			TripID:   tripID,
			Position: randomLocation(),
			SpeedKmh: 30 + rand.Float64()*30,
		}
		go simulateTrip(apiURL, state, interval)
	}

	select {} // Block forever
}
