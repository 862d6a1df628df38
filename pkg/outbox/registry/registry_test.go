package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
	"github.com/medimall/medimall-backend/pkg/outbox"
	"github.com/medimall/medimall-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	recordID := uuid.New()
	event := models.OutboxEvent{
		EventType:     enums.EventPaymentRecorded,
		AggregateType: enums.AggregatePaymentRecord,
		AggregateID:   recordID.String(),
		Payload: mustEnvelope(t, payloads.PaymentRecordedEvent{
			PaymentRecordID: recordID,
			PaymentIntentID: "pi_123",
			Amount:          1999,
			Currency:        "usd",
		}),
	}

	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	assert.Equal(t, "payments-topic", resolved.Descriptor.Topic)
	assert.NotEmpty(t, resolved.Envelope.EventID)

	payload, ok := resolved.Payload.(*payloads.PaymentRecordedEvent)
	require.True(t, ok, "unexpected payload type %T", resolved.Payload)
	assert.Equal(t, recordID, payload.PaymentRecordID)
	assert.Equal(t, int64(1999), payload.Amount)
}

func TestEventRegistryResolveRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)
	valid := mustEnvelope(t, payloads.PaymentIntentCreatedEvent{PaymentIntentID: "pi_1"})

	cases := map[string]models.OutboxEvent{
		"unknown type": {EventType: "order_created", AggregateType: enums.AggregatePaymentIntent, AggregateID: "pi_1", Payload: valid},
		"aggregate mismatch": {
			EventType: enums.EventPaymentIntentCreated, AggregateType: enums.AggregatePaymentRecord, AggregateID: "pi_1", Payload: valid,
		},
		"missing aggregate": {EventType: enums.EventPaymentIntentCreated, AggregateType: enums.AggregatePaymentIntent, Payload: valid},
		"bad envelope": {
			EventType: enums.EventPaymentIntentCreated, AggregateType: enums.AggregatePaymentIntent, AggregateID: "pi_1", Payload: json.RawMessage(`{`),
		},
		"null data": {
			EventType: enums.EventPaymentIntentCreated, AggregateType: enums.AggregatePaymentIntent, AggregateID: "pi_1", Payload: mustEnvelope(t, nil),
		},
	}

	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			require.Error(t, err)
			var nonRetry NonRetryableError
			assert.True(t, errors.As(err, &nonRetry))
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{PaymentsTopic: "payments-topic"})
	require.NoError(t, err)
	return reg
}

func mustEnvelope(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
	out, err := json.Marshal(envelope)
	require.NoError(t, err)
	return out
}

func TestEveryEventTypeHasDescriptor(t *testing.T) {
	reg := newTestEventRegistry(t)
	for _, eventType := range enums.OutboxEventTypes() {
		desc, ok := reg.entries[eventType]
		require.True(t, ok, eventType)
		assert.Equal(t, eventType.Aggregate(), desc.AggregateType)
		assert.NotNil(t, desc.decode)
	}
	assert.Len(t, decoders, len(enums.OutboxEventTypes()))
}
