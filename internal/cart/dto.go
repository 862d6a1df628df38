package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimall/medimall-backend/pkg/db/models"
)

// Direction is the sign of a single-unit quantity adjustment.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// AddItemDTO is the add-to-cart payload.
type AddItemDTO struct {
	UserEmail     string          `json:"user_email" validate:"required,email"`
	MedicineID    string          `json:"medicine_id" validate:"required"`
	MedicineName  string          `json:"medicine_name" validate:"omitempty,max=300"`
	MedicineImage string          `json:"medicine_image" validate:"omitempty,max=2048"`
	PerUnitPrice  decimal.Decimal `json:"per_unit_price"`
	SellerEmail   string          `json:"seller_email" validate:"omitempty,email"`
	Quantity      *int            `json:"quantity" validate:"omitempty,min=1"`
}

// CartItemDTO is the transport shape of a cart line.
type CartItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	UserEmail     string          `json:"user_email"`
	MedicineID    string          `json:"medicine_id"`
	MedicineName  string          `json:"medicine_name"`
	MedicineImage string          `json:"medicine_image"`
	PerUnitPrice  decimal.Decimal `json:"per_unit_price"`
	SellerEmail   string          `json:"seller_email"`
	Quantity      int             `json:"quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AdjustResult reports a quantity adjustment and the quantity read back after it.
type AdjustResult struct {
	ModifiedCount int64 `json:"modified_count"`
	Quantity      int   `json:"quantity"`
}

func (d AddItemDTO) toModel() *models.CartItem {
	qty := 1
	if d.Quantity != nil {
		qty = *d.Quantity
	}
	return &models.CartItem{
		UserEmail:     strings.ToLower(strings.TrimSpace(d.UserEmail)),
		MedicineID:    strings.TrimSpace(d.MedicineID),
		MedicineName:  d.MedicineName,
		MedicineImage: d.MedicineImage,
		PerUnitPrice:  d.PerUnitPrice,
		SellerEmail:   d.SellerEmail,
		Quantity:      qty,
	}
}

func fromModel(m models.CartItem) CartItemDTO {
	return CartItemDTO{
		ID:            m.ID,
		UserEmail:     m.UserEmail,
		MedicineID:    m.MedicineID,
		MedicineName:  m.MedicineName,
		MedicineImage: m.MedicineImage,
		PerUnitPrice:  m.PerUnitPrice,
		SellerEmail:   m.SellerEmail,
		Quantity:      m.Quantity,
		CreatedAt:     m.CreatedAt,
	}
}
