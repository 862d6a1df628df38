package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimall/medimall-backend/pkg/db/models"
)

// MedicineInput is the create and full-replace payload for a medicine.
type MedicineInput struct {
	MedicineName       string          `json:"medicine_name" validate:"required,max=300"`
	GenericName        string          `json:"generic_name" validate:"omitempty,max=300"`
	MedicineCompany    string          `json:"medicine_company" validate:"omitempty,max=300"`
	ShortDescription   string          `json:"short_description" validate:"omitempty,max=2000"`
	PerUnitPrice       decimal.Decimal `json:"per_unit_price"`
	MedicineImage      string          `json:"medicine_image" validate:"omitempty,max=2048"`
	MassUnit           string          `json:"mass_unit" validate:"omitempty,max=50"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Category           string          `json:"category" validate:"omitempty,max=200"`
	SellerEmail        string          `json:"seller_email" validate:"omitempty,email"`
}

type MedicineDTO struct {
	ID uuid.UUID `json:"id"`
	MedicineInput
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryInput struct {
	CategoryName  string `json:"category_name" validate:"required,max=200"`
	CategoryImage string `json:"category_image" validate:"omitempty,max=2048"`
}

type CategoryDTO struct {
	ID uuid.UUID `json:"id"`
	CategoryInput
	CreatedAt time.Time `json:"created_at"`
}

type AdviceInput struct {
	Title       string `json:"title" validate:"required,max=300"`
	Description string `json:"description" validate:"omitempty,max=10000"`
	Image       string `json:"image" validate:"omitempty,max=2048"`
	SellerEmail string `json:"seller_email" validate:"omitempty,email"`
}

type AdviceStatusInput struct {
	Status string `json:"status" validate:"required,max=50"`
}

type AdviceDTO struct {
	ID uuid.UUID `json:"id"`
	AdviceInput
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (in MedicineInput) toModel() *models.Medicine {
	return &models.Medicine{
		MedicineName:       strings.TrimSpace(in.MedicineName),
		GenericName:        in.GenericName,
		MedicineCompany:    in.MedicineCompany,
		ShortDescription:   in.ShortDescription,
		PerUnitPrice:       in.PerUnitPrice,
		MedicineImage:      in.MedicineImage,
		MassUnit:           in.MassUnit,
		DiscountPercentage: in.DiscountPercentage,
		Category:           in.Category,
		SellerEmail:        strings.ToLower(strings.TrimSpace(in.SellerEmail)),
	}
}

func medicineFromModel(m models.Medicine) MedicineDTO {
	return MedicineDTO{
		ID: m.ID,
		MedicineInput: MedicineInput{
			MedicineName:       m.MedicineName,
			GenericName:        m.GenericName,
			MedicineCompany:    m.MedicineCompany,
			ShortDescription:   m.ShortDescription,
			PerUnitPrice:       m.PerUnitPrice,
			MedicineImage:      m.MedicineImage,
			MassUnit:           m.MassUnit,
			DiscountPercentage: m.DiscountPercentage,
			Category:           m.Category,
			SellerEmail:        m.SellerEmail,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func categoryFromModel(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:            c.ID,
		CategoryInput: CategoryInput{CategoryName: c.CategoryName, CategoryImage: c.CategoryImage},
		CreatedAt:     c.CreatedAt,
	}
}

func adviceFromModel(a models.Advice) AdviceDTO {
	return AdviceDTO{
		ID: a.ID,
		AdviceInput: AdviceInput{
			Title:       a.Title,
			Description: a.Description,
			Image:       a.Image,
			SellerEmail: a.SellerEmail,
		},
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
