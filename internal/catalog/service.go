package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimall/medimall-backend/pkg/db/models"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/types"
)

const defaultAdviceStatus = "pending"

var hundred = decimal.NewFromInt(100)

// Service covers the plain catalog reads and writes.
type Service interface {
	ListMedicines(ctx context.Context) ([]MedicineDTO, error)
	CreateMedicine(ctx context.Context, in MedicineInput) (types.InsertResult, error)
	ReplaceMedicine(ctx context.Context, id string, in MedicineInput) (types.UpdateResult, error)
	DeleteMedicine(ctx context.Context, id string) (types.DeleteResult, error)

	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, in CategoryInput) (types.InsertResult, error)

	ListAdvice(ctx context.Context) ([]AdviceDTO, error)
	CreateAdvice(ctx context.Context, in AdviceInput) (types.InsertResult, error)
	SetAdviceStatus(ctx context.Context, id string, status string) (types.UpdateResult, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListMedicines(ctx context.Context) ([]MedicineDTO, error) {
	rows, err := s.repo.ListMedicines(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list medicines")
	}
	out := make([]MedicineDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, medicineFromModel(row))
	}
	return out, nil
}

func (s *service) CreateMedicine(ctx context.Context, in MedicineInput) (types.InsertResult, error) {
	if err := validatePricing(in); err != nil {
		return types.InsertResult{}, err
	}
	m := in.toModel()
	if err := s.repo.CreateMedicine(ctx, m); err != nil {
		return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert medicine")
	}
	return types.InsertResult{InsertedID: m.ID}, nil
}

func (s *service) ReplaceMedicine(ctx context.Context, id string, in MedicineInput) (types.UpdateResult, error) {
	medicineID, err := parseID(id, "medicine")
	if err != nil {
		return types.UpdateResult{}, err
	}
	if err := validatePricing(in); err != nil {
		return types.UpdateResult{}, err
	}
	modified, err := s.repo.ReplaceMedicine(ctx, medicineID, in.toModel())
	if err != nil {
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace medicine")
	}
	if modified == 0 {
		return types.UpdateResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
	}
	return types.UpdateResult{ModifiedCount: modified}, nil
}

func (s *service) DeleteMedicine(ctx context.Context, id string) (types.DeleteResult, error) {
	medicineID, err := parseID(id, "medicine")
	if err != nil {
		return types.DeleteResult{}, err
	}
	deleted, err := s.repo.DeleteMedicine(ctx, medicineID)
	if err != nil {
		return types.DeleteResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete medicine")
	}
	return types.DeleteResult{DeletedCount: deleted}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryFromModel(row))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) (types.InsertResult, error) {
	c := &models.Category{CategoryName: strings.TrimSpace(in.CategoryName), CategoryImage: in.CategoryImage}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	return types.InsertResult{InsertedID: c.ID}, nil
}

func (s *service) ListAdvice(ctx context.Context) ([]AdviceDTO, error) {
	rows, err := s.repo.ListAdvice(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list advice")
	}
	out := make([]AdviceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, adviceFromModel(row))
	}
	return out, nil
}

// CreateAdvice stores a new post awaiting moderation.
func (s *service) CreateAdvice(ctx context.Context, in AdviceInput) (types.InsertResult, error) {
	a := &models.Advice{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Image:       in.Image,
		SellerEmail: strings.ToLower(strings.TrimSpace(in.SellerEmail)),
		Status:      defaultAdviceStatus,
	}
	if err := s.repo.CreateAdvice(ctx, a); err != nil {
		return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert advice")
	}
	return types.InsertResult{InsertedID: a.ID}, nil
}

func (s *service) SetAdviceStatus(ctx context.Context, id string, status string) (types.UpdateResult, error) {
	adviceID, err := parseID(id, "advice")
	if err != nil {
		return types.UpdateResult{}, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return types.UpdateResult{}, pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}
	modified, err := s.repo.UpdateAdviceStatus(ctx, adviceID, status)
	if err != nil {
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update advice status")
	}
	if modified == 0 {
		return types.UpdateResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "advice not found")
	}
	return types.UpdateResult{ModifiedCount: modified}, nil
}

func validatePricing(in MedicineInput) error {
	if in.PerUnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "per_unit_price must not be negative")
	}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percentage must be between 0 and 100")
	}
	return nil
}

func parseID(raw, kind string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+kind+" id")
	}
	return id, nil
}
