package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/medimall/medimall-backend/pkg/enums"
)

// PaymentRecord is the durable log of a confirmed checkout. Amount, currency
// and ProviderCreatedAt come from the provider intent, never the caller.
type PaymentRecord struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	PaymentIntentID   string              `gorm:"column:payment_intent_id;not null;uniqueIndex"`
	Amount            int64               `gorm:"column:amount;not null"`
	Currency          string              `gorm:"column:currency;not null"`
	Status            enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Email             string              `gorm:"column:email;not null;index"`
	SellerEmail       string              `gorm:"column:seller_email;not null;default:''"`
	MedicineName      string              `gorm:"column:medicine_name;not null;default:''"`
	ProviderCreatedAt time.Time           `gorm:"column:provider_created_at;not null"`
	Date              string              `gorm:"column:date;not null;default:''"`
	PaidAt            *time.Time          `gorm:"column:paid_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
