package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Medicine is a catalog item listed by a seller.
type Medicine struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MedicineName       string          `gorm:"column:medicine_name;not null"`
	GenericName        string          `gorm:"column:generic_name;not null;default:''"`
	MedicineCompany    string          `gorm:"column:medicine_company;not null;default:''"`
	ShortDescription   string          `gorm:"column:short_description;not null;default:''"`
	PerUnitPrice       decimal.Decimal `gorm:"column:per_unit_price;type:numeric(12,2);not null"`
	MedicineImage      string          `gorm:"column:medicine_image;not null;default:''"`
	MassUnit           string          `gorm:"column:mass_unit;not null;default:''"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	Category           string          `gorm:"column:category;not null;default:''"`
	SellerEmail        string          `gorm:"column:seller_email;not null;default:'';index"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural table name.
func (Medicine) TableName() string { return "medicines" }

type Category struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryName  string    `gorm:"column:category_name;not null"`
	CategoryImage string    `gorm:"column:category_image;not null;default:''"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Category) TableName() string { return "categories" }

// Advice is seller-authored health content moderated through its status field.
type Advice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	Image       string    `gorm:"column:image;not null;default:''"`
	SellerEmail string    `gorm:"column:seller_email;not null;default:''"`
	Status      string    `gorm:"column:status;not null;default:'pending'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Advice) TableName() string { return "advice" }
