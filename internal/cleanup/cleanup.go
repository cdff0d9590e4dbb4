package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Таблицы одноразовых кодов: сброс пароля и приглашения админов.
var codeTables = []string{"password_reset_tokens", "admin_invites"}

type CleanupService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewCleanupService(db *gorm.DB, log *zap.Logger) *CleanupService {
	return &CleanupService{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// CleanupExpiredCodes удаляет истёкшие коды сброса пароля и приглашения.
func (c *CleanupService) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	now := c.now().UTC()
	var total int64

	for _, table := range codeTables {
		result := c.db.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE expires_at < ?", now)
		if result.Error != nil {
			c.log.Error("failed to cleanup expired codes", zap.String("table", table), zap.Error(result.Error))
			return total, result.Error
		}
		if result.RowsAffected > 0 {
			c.log.Info("cleaned up expired codes", zap.String("table", table), zap.Int64("count", result.RowsAffected))
		}
		total += result.RowsAffected
	}
	return total, nil
}

// CleanupConsumedCodes удаляет использованные коды старше 24 часов.
func (c *CleanupService) CleanupConsumedCodes(ctx context.Context) (int64, error) {
	cutoff := c.now().UTC().Add(-24 * time.Hour)
	var total int64

	for _, table := range codeTables {
		result := c.db.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE consumed = true AND created_at < ?", cutoff)
		if result.Error != nil {
			c.log.Error("failed to cleanup consumed codes", zap.String("table", table), zap.Error(result.Error))
			return total, result.Error
		}
		if result.RowsAffected > 0 {
			c.log.Info("cleaned up consumed codes", zap.String("table", table), zap.Int64("count", result.RowsAffected))
		}
		total += result.RowsAffected
	}
	return total, nil
}

// RunFullCleanup выполняет все задачи очистки
func (c *CleanupService) RunFullCleanup(ctx context.Context) error {
	c.log.Info("starting full cleanup")

	if _, err := c.CleanupExpiredCodes(ctx); err != nil {
		return err
	}
	if _, err := c.CleanupConsumedCodes(ctx); err != nil {
		return err
	}

	c.log.Info("full cleanup completed")
	return nil
}
