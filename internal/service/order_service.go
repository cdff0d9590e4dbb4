package service

import (
	"context"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardWindow: сколько отправленные заказы ещё видны в админке.
const DashboardWindow = 5 * 24 * time.Hour

type OrderService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewOrderService(repo *repository.Repository, log *zap.Logger) *OrderService {
	return &OrderService{
		repo: repo,
		now:  time.Now,
		log:  log,
	}
}

// ListDashboard: все неотправленные и отправленные за последние 5 дней,
// новые сверху.
func (s *OrderService) ListDashboard(ctx context.Context) ([]models.Order, error) {
	if _, _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.Orders.ListDashboard(ctx, s.now().UTC().Add(-DashboardWindow))
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if _, _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrNotFound
	}
	return ord, nil
}

// ToggleFulfillment переключает isSent; sentAt ставится при отправке и
// сбрасывается при отмене отметки.
func (s *OrderService) ToggleFulfillment(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	adminID, _, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Orders.ToggleSent(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrNotFound
	}

	s.log.Info("статус отправки заказа изменён",
		zap.String("order_id", id.String()),
		zap.Bool("is_sent", ord.IsSent),
		zap.String("admin_id", adminID.String()))
	return ord, nil
}
