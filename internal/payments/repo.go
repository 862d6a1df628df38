package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
)

// Repository persists payment records.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts rec on tx. A duplicate intent id fails the unique index.
func (r *Repository) CreateTx(tx *gorm.DB, rec *models.PaymentRecord) error {
	return tx.Create(rec).Error
}

// List returns every record, newest first.
func (r *Repository) List(ctx context.Context) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// MarkPaidTx moves a non-paid record to paid in one conditional statement.
// Zero rows means the record is missing or already paid.
func (r *Repository) MarkPaidTx(tx *gorm.DB, id uuid.UUID, paidAt time.Time) (int64, error) {
	res := tx.Model(&models.PaymentRecord{}).
		Where("id = ? AND status <> ?", id, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"status":     enums.PaymentStatusPaid,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		})
	return res.RowsAffected, res.Error
}
