package payloads

import (
	"time"

	"github.com/google/uuid"
)

// PaymentIntentCreatedEvent records a provider intent before any local record exists.
type PaymentIntentCreatedEvent struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Email           string `json:"email"`
}

// PaymentRecordedEvent is emitted in the same transaction that persists the record.
type PaymentRecordedEvent struct {
	PaymentRecordID uuid.UUID `json:"payment_record_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	Email           string    `json:"email"`
	SellerEmail     string    `json:"seller_email"`
}

// PaymentUnrecordedEvent flags an intent whose record could not be persisted.
// Operators reconcile it against the provider dashboard.
type PaymentUnrecordedEvent struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Email           string `json:"email"`
	SellerEmail     string `json:"seller_email,omitempty"`
	MedicineName    string `json:"medicine_name,omitempty"`
	Reason          string `json:"reason"`
}

// PaymentPaidEvent is emitted when an admin accepts a pending record.
type PaymentPaidEvent struct {
	PaymentRecordID uuid.UUID `json:"payment_record_id"`
	PaidBy          string    `json:"paid_by"`
	PaidAt          time.Time `json:"paid_at"`
}
