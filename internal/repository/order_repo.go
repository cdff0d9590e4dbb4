package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// ListDashboard: все неотправленные + отправленные не раньше since.
	ListDashboard(ctx context.Context, since time.Time) ([]models.Order, error)
	ToggleSent(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Items.Product").
		Preload("Items.Variant")
}

// Create вставляет только заголовок заказа; позиции пишет OrderItemRepo.
func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := withItems(r.db.WithContext(ctx)).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) ListDashboard(ctx context.Context, since time.Time) ([]models.Order, error) {
	var list []models.Order
	err := withItems(r.db.WithContext(ctx)).
		Where("is_sent = false OR sent_at >= ?", since).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// ToggleSent переключает флаг одним UPDATE: в SET Postgres видит старые значения
// колонок, поэтому sent_at выставляется по прежнему is_sent.
func (r *orderRepo) ToggleSent(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE orders
SET is_sent = NOT is_sent,
    sent_at = CASE WHEN is_sent THEN NULL ELSE CAST(@now AS timestamptz) END
WHERE id = @id
`, map[string]any{
		"id":  id,
		"now": now,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&cnt).Error
	return cnt > 0, err
}
