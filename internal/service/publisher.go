package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Lifecycle message types published on the event feed
const (
	ContractorInvitedEvent  = "contractor.invited"
	ContractorAppliedEvent  = "contractor.applied"
	ContractorRejectedEvent = "contractor.rejected"
	ContractorApprovedEvent = "contractor.approved"
	ContractorDeniedEvent   = "contractor.denied"
	EventCreatedEvent       = "event.created"
	EventUpdatedEvent       = "event.updated"
	EventDeletedEvent       = "event.deleted"
)

// LifecycleMessage is one committed change on an event
type LifecycleMessage struct {
	Type         string    `json:"type"`
	EventID      string    `json:"event_id"`
	ContractorID int64     `json:"contractor_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits lifecycle messages after a change is committed
type Publisher interface {
	Publish(ctx context.Context, msgs ...LifecycleMessage) error
}

// KafkaPublisher writes lifecycle messages to a Kafka topic keyed by event id
type KafkaPublisher struct {
	writer *kafka.Writer
	debug  bool
}

// NewKafkaPublisher creates an async publisher for topic on brokers
func NewKafkaPublisher(brokers []string, topic string, debug bool) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("Error publishing %d lifecycle messages: %v", len(messages), err)
			}
		},
	}
	log.Printf("Lifecycle feed enabled: topic=%s, brokers=%v", topic, brokers)
	return &KafkaPublisher{writer: writer, debug: debug}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msgs ...LifecycleMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		value, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
		}
		out = append(out, kafka.Message{
			Key:   []byte(msg.EventID),
			Value: value,
			Time:  msg.OccurredAt,
		})
	}

	if p.debug {
		log.Printf("[DEBUG] Publishing %d lifecycle messages to %s", len(out), p.writer.Topic)
	}
	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("failed to publish lifecycle messages: %w", err)
	}
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards lifecycle messages when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...LifecycleMessage) error { return nil }
