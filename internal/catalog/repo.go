package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimall/medimall-backend/pkg/db/models"
)

// Repository persists medicines, categories and advice posts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Repository) CreateMedicine(ctx context.Context, m *models.Medicine) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ReplaceMedicine overwrites every editable column of the medicine.
func (r *Repository) ReplaceMedicine(ctx context.Context, id uuid.UUID, m *models.Medicine) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ?", id).
		Select(
			"medicine_name", "generic_name", "medicine_company", "short_description",
			"per_unit_price", "medicine_image", "mass_unit", "discount_percentage",
			"category", "seller_email", "updated_at",
		).
		Updates(m)
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteMedicine(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Medicine{})
	return res.RowsAffected, res.Error
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) ListAdvice(ctx context.Context) ([]models.Advice, error) {
	var out []models.Advice
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Repository) CreateAdvice(ctx context.Context, a *models.Advice) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) UpdateAdviceStatus(ctx context.Context, id uuid.UUID, status string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Advice{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}
