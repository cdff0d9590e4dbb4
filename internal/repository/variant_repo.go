package repository

import (
	"context"
	"errors"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VariantRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error)
	// SetStock перезаписывает остаток варианта; productID страхует от
	// правки чужого варианта.
	SetStock(ctx context.Context, productID, variantID uuid.UUID, stock int32) (bool, error)
	// TryDecrementStock: if stock >= qty then stock -= qty (атомарно)
	TryDecrementStock(ctx context.Context, productID, variantID uuid.UUID, qty int32) (bool, error)
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepo(db *gorm.DB) VariantRepo { return &variantRepo{db: db} }

func (r *variantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &v, err
}

func (r *variantRepo) BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return []models.ProductVariant{}, nil
	}

	var list []models.ProductVariant
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *variantRepo) SetStock(ctx context.Context, productID, variantID uuid.UUID, stock int32) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND product_id = ?", variantID, productID).
		Update("stock", stock)
	return tx.RowsAffected > 0, tx.Error
}

func (r *variantRepo) TryDecrementStock(ctx context.Context, productID, variantID uuid.UUID, qty int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET stock = stock - @q
WHERE id = @vid
  AND product_id = @pid
  AND stock >= @q
`, map[string]any{
		"vid": variantID,
		"pid": productID,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}
