package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
)

// DefaultTopic receives every portal event.
const DefaultTopic = "farmer_portal_events"

// Publisher writes portal events to Kafka, keyed by session so that one
// farmer's events stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event events.Envelope) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Message encodes event as a Kafka message.
func Message(event events.Envelope) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.SessionID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
