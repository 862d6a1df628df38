package enums

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregatePaymentIntent OutboxAggregateType = "payment_intent"
	AggregatePaymentRecord OutboxAggregateType = "payment_record"
)

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	return a == AggregatePaymentIntent || a == AggregatePaymentRecord
}

// OutboxEventType names a durable checkout outcome.
type OutboxEventType string

const (
	EventPaymentIntentCreated OutboxEventType = "payment_intent_created"
	EventPaymentRecorded      OutboxEventType = "payment_recorded"
	EventPaymentUnrecorded    OutboxEventType = "payment_unrecorded"
	EventPaymentPaid          OutboxEventType = "payment_paid"
)

// Intent-side events are keyed by the provider's intent id, record-side events by
// the local record uuid.
var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventPaymentIntentCreated: AggregatePaymentIntent,
	EventPaymentUnrecorded:    AggregatePaymentIntent,
	EventPaymentRecorded:      AggregatePaymentRecord,
	EventPaymentPaid:          AggregatePaymentRecord,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// Aggregate returns the aggregate type every event of this type must carry,
// or "" for unknown types.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}

// OutboxEventTypes lists every known event type in a stable order.
func OutboxEventTypes() []OutboxEventType {
	return []OutboxEventType{
		EventPaymentIntentCreated,
		EventPaymentRecorded,
		EventPaymentUnrecorded,
		EventPaymentPaid,
	}
}
