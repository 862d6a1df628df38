package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart. Every add creates a new row; quantity
// only moves through single-statement adjustments.
type CartItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserEmail     string          `gorm:"column:user_email;not null;index"`
	MedicineID    string          `gorm:"column:medicine_id;not null"`
	MedicineName  string          `gorm:"column:medicine_name;not null;default:''"`
	MedicineImage string          `gorm:"column:medicine_image;not null;default:''"`
	PerUnitPrice  decimal.Decimal `gorm:"column:per_unit_price;type:numeric(12,2);not null;default:0"`
	SellerEmail   string          `gorm:"column:seller_email;not null;default:''"`
	Quantity      int             `gorm:"column:quantity;not null;default:1"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
