// Package mqtt bridges broker-delivered position reports into the same
// ingestion pipeline the HTTP endpoint uses. Drivers on flaky mobile
// links publish to trips/{trip_id}/location instead of POSTing.
package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/windsorlogistics/truck-tracker/internal/ingest"
	"github.com/windsorlogistics/truck-tracker/internal/models"
)

const (
	topicFilter    = "trips/+/location"
	connectTimeout = 10 * time.Second
	ingestTimeout  = 10 * time.Second
)

// Bridge subscribes to driver position topics and feeds the pipeline.
type Bridge struct {
	client   paho.Client
	pipeline *ingest.Pipeline
}

// NewBridge connects to broker and subscribes. An empty broker address
// returns a nil bridge, meaning the transport is disabled.
func NewBridge(broker string, pipeline *ingest.Pipeline) (*Bridge, error) {
	if broker == "" {
		return nil, nil
	}

	b := &Bridge{pipeline: pipeline}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("truck-tracker-ingest").
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(c paho.Client) {
			if token := c.Subscribe(topicFilter, 1, b.handle); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).Error("mqtt subscribe failed")
			}
		})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	b.client = client
	log.WithField("broker", broker).Info("mqtt ingestion bridge connected")
	return b, nil
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	if b == nil || b.client == nil {
		return
	}
	b.client.Disconnect(250)
}

func (b *Bridge) handle(_ paho.Client, msg paho.Message) {
	tripID, ok := tripIDFromTopic(msg.Topic())
	if !ok {
		log.WithField("topic", msg.Topic()).Debug("ignoring message on unexpected topic")
		return
	}

	var loc models.LocationUpdate
	if err := json.Unmarshal(msg.Payload(), &loc); err != nil {
		log.WithField("trip_id", tripID).WithError(err).Warn("dropping malformed position payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if _, err := b.pipeline.Ingest(ctx, tripID, "", loc); err != nil {
		log.WithField("trip_id", tripID).WithError(err).Warn("mqtt position rejected")
	}
}

// tripIDFromTopic extracts the trip id from trips/{trip_id}/location.
func tripIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "trips" || parts[2] != "location" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
