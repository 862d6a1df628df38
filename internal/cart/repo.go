package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimall/medimall-backend/pkg/db/models"
)

// Repository persists cart line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the cart repository to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new line. Identical lines are not merged.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads one line.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByOwner returns the owner's lines, oldest first.
func (r *Repository) ListByOwner(ctx context.Context, email string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Delete removes one line by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// DeleteByOwner removes every line owned by email.
func (r *Repository) DeleteByOwner(ctx context.Context, email string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_email = ?", email).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// Increment adds one in a single statement so concurrent calls never lose an update.
func (r *Repository) Increment(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + 1"))
	return res.RowsAffected, res.Error
}

// Decrement subtracts one unless the line is already at zero.
func (r *Repository) Decrement(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND quantity > 0", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	return res.RowsAffected, res.Error
}
