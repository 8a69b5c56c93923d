// Package events publishes domain events to Kafka. Publishing is optional
// and best effort: without a broker the publisher is a no-op, and a failed
// publish never affects the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Topics.
const (
	TopicBookingCreated = "booking.created"
	TopicTripLocation   = "trip.location"
)

// Publisher writes domain events to Kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers. An empty broker
// string returns a disabled publisher.
func NewPublisher(brokers string) *Publisher {
	if brokers == "" {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish sends v to topic keyed by key, asynchronously. Failures are
// logged and dropped.
func (p *Publisher) Publish(topic, key string, v interface{}) {
	if !p.Enabled() {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Error("failed to encode event")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := p.writer.WriteMessages(ctx, kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: data,
		})
		if err != nil {
			log.WithError(err).WithField("topic", topic).Error("failed to publish event")
		}
	}()
}

// Close shuts the underlying writer down.
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
