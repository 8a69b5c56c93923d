package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := loadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "truck_tracker", cfg.MongoDB)
	assert.Empty(t, cfg.KafkaBrokers, "kafka disabled by default")
	assert.Empty(t, cfg.MQTTBroker, "mqtt disabled by default")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := loadConfig()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "kafka:9092", cfg.KafkaBrokers)
	assert.Equal(t, "debug", cfg.LogLevel)
}
