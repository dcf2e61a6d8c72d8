package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
)

const DefaultOutfitEventsTopic = "outfit-events"

type EventType string

const (
	EventPatternFlagged EventType = "pattern_flagged"
	EventOutfitSaved    EventType = "outfit_saved"
	EventOutfitWorn     EventType = "outfit_worn"
	EventOutfitRated    EventType = "outfit_rated"
	EventOutfitRenamed  EventType = "outfit_renamed"
	EventOutfitDeleted  EventType = "outfit_deleted"
	EventItemsImported  EventType = "items_imported"
)

// OutfitEvent is the payload written to the outfit events topic.
type OutfitEvent struct {
	EventID   uuid.UUID      `json:"event_id"`
	Type      EventType      `json:"type"`
	OwnerID   uuid.UUID      `json:"owner_id"`
	OutfitID  *uuid.UUID     `json:"outfit_id,omitempty"`
	Pattern   string         `json:"pattern,omitempty"`
	ItemIDs   []string       `json:"item_ids,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher is what services depend on; a nil *MessageBus satisfies it as a no-op.
type Publisher interface {
	PublishOutfitEvent(ctx context.Context, event OutfitEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type MessageBus struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

// NewMessageBus returns nil when Kafka is disabled.
func NewMessageBus(cfg *config.Config, logger *logrus.Logger) *MessageBus {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka disabled, outfit events will not be published")
		return nil
	}

	topic := cfg.Kafka.Topics.OutfitEvents
	if topic == "" {
		topic = DefaultOutfitEventsTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // keyed by owner so one wardrobe stays ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
	return newMessageBus(writer, topic, logger)
}

func newMessageBus(writer messageWriter, topic string, logger *logrus.Logger) *MessageBus {
	return &MessageBus{writer: writer, topic: topic, logger: logger}
}

func (mb *MessageBus) PublishOutfitEvent(ctx context.Context, event OutfitEvent) error {
	if mb == nil || mb.writer == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OwnerID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mb.writer.WriteMessages(ctx, msg); err != nil {
		mb.logger.WithError(err).WithField("event_type", event.Type).Error("Failed to publish outfit event")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"event_type": event.Type,
		"owner_id":   event.OwnerID,
		"topic":      mb.topic,
	}).Debug("Outfit event published")
	return nil
}

func (mb *MessageBus) Close() error {
	if mb == nil || mb.writer == nil {
		return nil
	}
	if err := mb.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}
