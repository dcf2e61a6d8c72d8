package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/wardrobe/internal/config"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestMessageBus_PublishOutfitEvent(t *testing.T) {
	writer := &recordingWriter{}
	bus := newMessageBus(writer, DefaultOutfitEventsTopic, testLogger())
	owner := uuid.New()

	err := bus.PublishOutfitEvent(context.Background(), OutfitEvent{
		Type:    EventPatternFlagged,
		OwnerID: owner,
		Pattern: "jeans+tshirt",
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, owner.String(), string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "pattern_flagged", headers["event_type"])
	assert.NotEmpty(t, headers["event_id"])

	var decoded OutfitEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "jeans+tshirt", decoded.Pattern)
	assert.NotEqual(t, uuid.Nil, decoded.EventID)
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestMessageBus_WriteFailure(t *testing.T) {
	boom := errors.New("broker unavailable")
	bus := newMessageBus(&recordingWriter{err: boom}, DefaultOutfitEventsTopic, testLogger())

	err := bus.PublishOutfitEvent(context.Background(), OutfitEvent{Type: EventOutfitSaved, OwnerID: uuid.New()})
	assert.ErrorIs(t, err, boom)
}

func TestMessageBus_NilIsNoop(t *testing.T) {
	var bus *MessageBus
	assert.NoError(t, bus.PublishOutfitEvent(context.Background(), OutfitEvent{Type: EventOutfitWorn}))
	assert.NoError(t, bus.Close())
}

func TestNewMessageBus_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Enabled = false
	assert.Nil(t, NewMessageBus(cfg, testLogger()))

	cfg.Kafka.Enabled = true
	assert.Nil(t, NewMessageBus(cfg, testLogger()), "no brokers configured")
}

func TestMessageBus_Close(t *testing.T) {
	writer := &recordingWriter{}
	bus := newMessageBus(writer, DefaultOutfitEventsTopic, testLogger())
	require.NoError(t, bus.Close())
	assert.True(t, writer.closed)
}
