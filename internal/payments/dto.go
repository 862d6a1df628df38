package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
)

// CreateIntentInput is the checkout start payload. Amount is in major units.
type CreateIntentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Email  string          `json:"email" validate:"required,email"`
}

type CreateIntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// IntentRef is the confirmed intent echoed back by the browser. Only the id is
// trusted; everything else is re-read from the provider.
type IntentRef struct {
	ID string `json:"id" validate:"required"`
}

// SaveDetailsInput is the checkout confirmation payload. Status is accepted for
// compatibility and ignored: records always start pending.
type SaveDetailsInput struct {
	PaymentIntent IntentRef `json:"payment_intent" validate:"required"`
	UserEmail     string    `json:"user_email" validate:"required,email"`
	SellerEmail   string    `json:"seller_email" validate:"omitempty,email"`
	MedicineName  string    `json:"medicine_name" validate:"omitempty,max=300"`
	Status        string    `json:"status"`
	Date          string    `json:"date" validate:"omitempty,max=64"`
}

type PaymentRecordDTO struct {
	ID              uuid.UUID           `json:"id"`
	PaymentIntentID string              `json:"payment_intent_id"`
	Amount          int64               `json:"amount"`
	Currency        string              `json:"currency"`
	Status          enums.PaymentStatus `json:"status"`
	Email           string              `json:"email"`
	SellerEmail     string              `json:"seller_email"`
	MedicineName    string              `json:"medicine_name"`
	Created         int64               `json:"created"`
	Date            string              `json:"date"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	RecordedAt      time.Time           `json:"recorded_at"`
}

func recordFromModel(m models.PaymentRecord) PaymentRecordDTO {
	return PaymentRecordDTO{
		ID:              m.ID,
		PaymentIntentID: m.PaymentIntentID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Status:          m.Status.Normalize(),
		Email:           m.Email,
		SellerEmail:     m.SellerEmail,
		MedicineName:    m.MedicineName,
		Created:         m.ProviderCreatedAt.Unix(),
		Date:            m.Date,
		PaidAt:          m.PaidAt,
		RecordedAt:      m.CreatedAt,
	}
}
