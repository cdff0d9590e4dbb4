package repository

import (
	"context"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetRepo хранит одноразовые коды сброса пароля. У пользователя
// действует только последний выданный код.
type PasswordResetRepo interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	GetValidByHash(ctx context.Context, userID uuid.UUID, codeHash string, now time.Time) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type passwordResetRepo struct{ db *gorm.DB }

func NewPasswordResetRepo(db *gorm.DB) PasswordResetRepo { return &passwordResetRepo{db: db} }

// pendingReset: код не погашен и не истёк к моменту now.
func pendingReset(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("consumed = ?", false).Where("expires_at > ?", now)
	}
}

// Create выдаёт новый код и в той же транзакции удаляет прежние непогашенные.
func (r *passwordResetRepo) Create(ctx context.Context, t *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(map[string]any{"user_id": t.UserID, "consumed": false}).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *passwordResetRepo) GetValidByHash(ctx context.Context, userID uuid.UUID, codeHash string, now time.Time) (*models.PasswordResetToken, error) {
	var rows []models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Scopes(pendingReset(now)).
		Where(map[string]any{"user_id": userID, "code_hash": codeHash}).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// Consume гасит код; false: его уже погасил параллельный запрос.
func (r *passwordResetRepo) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{ID: id}).
		Where("consumed = ?", false).
		UpdateColumn("consumed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteAllForUser вызывается после смены пароля: погашенные коды тоже больше не нужны.
func (r *passwordResetRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(map[string]any{"user_id": userID}).
		Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
