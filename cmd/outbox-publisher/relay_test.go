package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/metrics"
	"github.com/medimall/medimall-backend/pkg/outbox"
	"github.com/medimall/medimall-backend/pkg/outbox/payloads"
	"github.com/medimall/medimall-backend/pkg/outbox/registry"
)

func TestDrainRetriesFailedRowAndPublishesTheRest(t *testing.T) {
	store := &memoryEvents{rows: []models.OutboxEvent{unrecordedRow(t, "pi_one", 0), unrecordedRow(t, "pi_two", 0)}}
	bus := &recordingBus{errs: []error{errors.New("transient")}}
	relay := newTestRelay(t, store, bus, config.OutboxConfig{BatchSize: 2, MaxAttempts: 5})

	n, err := relay.drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uuid.UUID{store.rows[0].ID}, store.failed)
	assert.Equal(t, []uuid.UUID{store.rows[1].ID}, store.published)
	assert.Empty(t, store.parked)
}

func TestDeliverSetsMessageAttributes(t *testing.T) {
	row := unrecordedRow(t, "pi_attr", 0)
	store := &memoryEvents{rows: []models.OutboxEvent{row}}
	bus := &recordingBus{}
	relay := newTestRelay(t, store, bus, config.OutboxConfig{})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Len(t, bus.sent, 1)

	msg := bus.sent[0]
	assert.Equal(t, "payments-topic", bus.topics[0])
	assert.Equal(t, string(enums.EventPaymentUnrecorded), msg.Attributes["event_type"])
	assert.Equal(t, "pi_attr", msg.Attributes["aggregate_id"])
	assert.Equal(t, "1", msg.Attributes["schema_version"])
	assert.Equal(t, sourceAttr, msg.Attributes["source"])
	assert.JSONEq(t, string(row.Payload), string(msg.Data))
}

func TestDrainParksUnknownEventType(t *testing.T) {
	row := unrecordedRow(t, "pi_bad", 0)
	row.EventType = "order_created"
	store := &memoryEvents{rows: []models.OutboxEvent{row}}
	bus := &recordingBus{}
	relay := newTestRelay(t, store, bus, config.OutboxConfig{})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{row.ID}, store.parked)
	assert.Empty(t, bus.sent)
}

func TestDrainParksAtMaxAttempts(t *testing.T) {
	store := &memoryEvents{rows: []models.OutboxEvent{unrecordedRow(t, "pi_retry", 1)}}
	bus := &recordingBus{errs: []error{errors.New("transient")}}
	reg := prometheus.NewRegistry()
	relay := newTestRelay(t, store, bus, config.OutboxConfig{BatchSize: 1, MaxAttempts: 2})
	relay.metrics = metrics.NewOutboxMetrics(reg)

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Len(t, store.parked, 1)
	assert.Empty(t, store.failed)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Equal(t, "outbox_publish_total", mfs[0].GetName())
}

func TestDrainParksNonRetryableSendError(t *testing.T) {
	store := &memoryEvents{rows: []models.OutboxEvent{unrecordedRow(t, "pi_fatal", 0)}}
	bus := &recordingBus{errs: []error{registry.NewNonRetryableError(errors.New("topic gone"))}}
	relay := newTestRelay(t, store, bus, config.OutboxConfig{})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.parked, 1)
}

func TestDrainEmpty(t *testing.T) {
	relay := newTestRelay(t, &memoryEvents{}, &recordingBus{}, config.OutboxConfig{})
	n, err := relay.drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunStopsOnCancel(t *testing.T) {
	relay := newTestRelay(t, &memoryEvents{}, &recordingBus{}, config.OutboxConfig{PollIntervalMS: 10})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, relay.Run(ctx), context.DeadlineExceeded)
}

func TestBackoffDoublesUpToCap(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoff(time.Second, time.Second))
	assert.Equal(t, maxIdleBackoff, backoff(8*time.Second, time.Second))
	assert.Equal(t, 2*time.Second, backoff(0, time.Second))
	assert.Less(t, jitter(), jitterWindow)
}

func TestNewRelayRequiresDependencies(t *testing.T) {
	_, err := NewRelay(RelayParams{})
	require.Error(t, err)
}

func newTestRelay(t *testing.T, store eventStore, bus *recordingBus, cfg config.OutboxConfig) *Relay {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{PaymentsTopic: "payments-topic"})
	require.NoError(t, err)
	relay, err := NewRelay(RelayParams{
		Outbox:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "outbox-relay-test", Output: io.Discard}),
		DB:       inlineTx{},
		PubSub:   idleTopics{},
		Events:   store,
		Registry: reg,
		Send:     bus.send,
	})
	require.NoError(t, err)
	return relay
}

func unrecordedRow(tb testing.TB, intentID string, attempts int) models.OutboxEvent {
	tb.Helper()
	data, err := json.Marshal(payloads.PaymentUnrecordedEvent{PaymentIntentID: intentID, Email: "buyer@x.com", Reason: "insert failed"})
	require.NoError(tb, err)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	})
	require.NoError(tb, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPaymentUnrecorded,
		AggregateType: enums.AggregatePaymentIntent,
		AggregateID:   intentID,
		Payload:       payload,
		AttemptCount:  attempts,
	}
}

type memoryEvents struct {
	rows      []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	parked    []uuid.UUID
}

func (m *memoryEvents) FetchUnpublishedForPublish(_ *gorm.DB, _, _ int) ([]models.OutboxEvent, error) {
	return m.rows, nil
}

func (m *memoryEvents) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	m.published = append(m.published, id)
	return nil
}

func (m *memoryEvents) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	m.failed = append(m.failed, id)
	return nil
}

func (m *memoryEvents) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	m.parked = append(m.parked, id)
	return nil
}

type inlineTx struct{}

func (inlineTx) Ping(context.Context) error { return nil }

func (inlineTx) WithTx(_ context.Context, fn func(*gorm.DB) error) error { return fn(nil) }

type idleTopics struct{}

func (idleTopics) Ping(context.Context) error { return nil }

func (idleTopics) Publisher(string) *gcppubsub.Publisher { return nil }

type recordingBus struct {
	errs   []error
	sent   []*gcppubsub.Message
	topics []string
}

func (b *recordingBus) send(_ context.Context, topic string, msg *gcppubsub.Message) error {
	b.sent = append(b.sent, msg)
	b.topics = append(b.topics, topic)
	if len(b.errs) == 0 {
		return nil
	}
	err := b.errs[0]
	b.errs = b.errs[1:]
	return err
}
