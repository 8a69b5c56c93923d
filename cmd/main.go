package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/auth"
	"github.com/windsorlogistics/truck-tracker/internal/booking"
	"github.com/windsorlogistics/truck-tracker/internal/db"
	"github.com/windsorlogistics/truck-tracker/internal/events"
	"github.com/windsorlogistics/truck-tracker/internal/handlers"
	"github.com/windsorlogistics/truck-tracker/internal/ingest"
	"github.com/windsorlogistics/truck-tracker/internal/middleware"
	"github.com/windsorlogistics/truck-tracker/internal/mqtt"
	"github.com/windsorlogistics/truck-tracker/internal/realtime"
	"github.com/windsorlogistics/truck-tracker/internal/share"
	"github.com/windsorlogistics/truck-tracker/internal/trips"
)

type config struct {
	Port         string
	MongoURI     string
	MongoDB      string
	KafkaBrokers string
	MQTTBroker   string
	LogLevel     string
}

func loadConfig() config {
	cfg := config{
		Port:         getenv("PORT", "8080"),
		MongoURI:     getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getenv("MONGO_DB", "truck_tracker"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	cfg := loadConfig()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	client, err := db.Connect(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	database := client.Database(cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.WithError(err).Fatal("failed to create indexes")
	}
	cancel()
	log.Info("connected to MongoDB")

	trucks := &db.MongoTruckCollection{Collection: database.Collection(db.CollTrucks)}
	bookings := &db.MongoBookingCollection{Collection: database.Collection(db.CollBookings)}
	tripStore := &db.MongoTripCollection{Collection: database.Collection(db.CollTrips)}
	locations := &db.MongoLocationCollection{Collection: database.Collection(db.CollLocations)}
	truckLocs := &db.MongoTruckLocationCollection{Collection: database.Collection(db.CollTruckLocations)}
	shares := &db.MongoShareCollection{Collection: database.Collection(db.CollTripShares)}
	users := &db.MongoUserCollection{Collection: database.Collection(db.CollUsers)}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	hub := realtime.NewHub()

	bookingSvc := booking.NewService(trucks, bookings, tripStore, publisher)
	tripSvc := trips.NewService(tripStore)
	shareSvc := share.NewService(tripStore, shares)
	pipeline := ingest.NewPipeline(tripStore, locations, truckLocs, hub, publisher)

	bridge, err := mqtt.NewBridge(cfg.MQTTBroker, pipeline)
	if err != nil {
		log.WithError(err).Fatal("failed to connect mqtt bridge")
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:      handlers.NewAuthHandler(authService, users),
		Trucks:    handlers.NewTruckHandler(trucks),
		Bookings:  handlers.NewBookingHandler(bookingSvc, bookings),
		Trips:     handlers.NewTripHandler(tripSvc, shareSvc, locations),
		Locations: handlers.NewLocationHandler(pipeline, truckLocs),
		WS:        handlers.NewWSHandler(hub, truckLocs),
		AuthMW:    middleware.NewAuthMiddleware(authService),
		RateLimit: middleware.NewRateLimitMiddleware(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	bridge.Close()
	publisher.Close()
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("mongo disconnect failed")
	}
}
