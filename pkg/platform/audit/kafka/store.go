// Package kafka publishes audit events to a Kafka topic. Kafka is the
// durable sink for deployments where downstream pipelines consume auth
// events; this store is write-only and reads are served by those consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	id "gesher/pkg/domain"
	"gesher/pkg/platform/audit"
	"gesher/pkg/platform/sentinel"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "gesher.audit.auth"

// payload is the JSON structure written to the topic. Field names are part
// of the contract with downstream consumers.
type payload struct {
	ID        string `json:"ID"`
	Timestamp string `json:"Timestamp"`
	Phone     string `json:"Phone,omitempty"`
	Action    string `json:"Action"`
	Reason    string `json:"Reason,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
}

// Store implements audit.Store by producing to Kafka.
type Store struct {
	client *kgo.Client
	topic  string
}

var _ audit.Store = (*Store)(nil)

// New constructs a Kafka-backed audit store. The client lifecycle is managed
// by the caller.
func New(client *kgo.Client, topic string) *Store {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Store{client: client, topic: topic}
}

// Append produces the event synchronously. Events for the same phone share a
// record key so consumers see per-user ordering.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		ID:        uuid.NewString(),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Phone:     event.Phone.String(),
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Phone.String()),
		Value: body,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// List is not supported; Kafka is a write-only sink here.
func (s *Store) List(ctx context.Context, phone id.Phone) ([]audit.Event, error) {
	return nil, fmt.Errorf("kafka audit store is write-only: %w", sentinel.ErrUnavailable)
}
