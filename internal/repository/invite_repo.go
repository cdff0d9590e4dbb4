package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type InviteRepo interface {
	Create(ctx context.Context, inv *models.AdminInvite) error
	GetValidByHash(ctx context.Context, email, codeHash string, now time.Time) (*models.AdminInvite, error)
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
	DeletePendingForEmail(ctx context.Context, email string) (int64, error)
}

type inviteRepo struct{ db *gorm.DB }

func NewInviteRepo(db *gorm.DB) InviteRepo { return &inviteRepo{db: db} }

func (r *inviteRepo) Create(ctx context.Context, inv *models.AdminInvite) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *inviteRepo) GetValidByHash(ctx context.Context, email, codeHash string, now time.Time) (*models.AdminInvite, error) {
	var inv models.AdminInvite
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?) AND code_hash = ? AND consumed = false AND expires_at > ?", email, codeHash, now).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *inviteRepo) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AdminInvite{}).
		Where("id = ? AND consumed = false", id).
		Update("consumed", true)
	return res.RowsAffected > 0, res.Error
}

// DeletePendingForEmail: повторное приглашение отзывает прежние коды.
func (r *inviteRepo) DeletePendingForEmail(ctx context.Context, email string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("lower(email) = lower(?) AND consumed = false", email).
		Delete(&models.AdminInvite{})
	return res.RowsAffected, res.Error
}
