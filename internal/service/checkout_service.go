package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/pkg/metrics"

	"go.uber.org/zap"
)

type CheckoutOptions struct {
	// TxTimeout ограничивает транзакцию списания; 0: только ctx запроса.
	TxTimeout     time.Duration
	NotifyTimeout time.Duration
}

type CheckoutService struct {
	store    CheckoutStore
	notifier Notifier
	metrics  *metrics.CheckoutMetrics
	cache    CacheClient
	opts     CheckoutOptions
	now      func() time.Time
	log      *zap.Logger

	pending sync.WaitGroup
}

func NewCheckoutService(store CheckoutStore, notifier Notifier, m *metrics.CheckoutMetrics, opts CheckoutOptions, log *zap.Logger) *CheckoutService {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 15 * time.Second
	}
	return &CheckoutService{
		store:    store,
		notifier: notifier,
		metrics:  m,
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

// SetCache подключает кэш каталога: после списания остатков его страницы
// сбрасываются. nil отключает сброс.
func (s *CheckoutService) SetCache(c CacheClient) {
	s.cache = c
}

// Checkout проверяет корзину, в одной транзакции списывает остатки и создаёт
// заказ, затем асинхронно отправляет подтверждение. Ошибка отправки письма на
// результат не влияет.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	order, err := s.checkout(ctx, in)
	s.metrics.ObserveCheckout(checkoutResult(err))
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.dispatchConfirmation(ctx, order)
	return order, nil
}

func (s *CheckoutService) checkout(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	if err := validateCheckoutInput(&in); err != nil {
		return nil, err
	}

	productIDs, variantIDs := distinctIDs(in.Items)

	products, err := s.store.BatchGetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	var variants []models.ProductVariant
	if len(variantIDs) > 0 {
		variants, err = s.store.BatchGetVariants(ctx, variantIDs)
		if err != nil {
			return nil, fmt.Errorf("load variants: %w", err)
		}
	}

	plan, err := BuildCheckoutPlan(in.Items, products, variants)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, in, plan)
}

func (s *CheckoutService) commit(ctx context.Context, in CheckoutInput, plan *CheckoutPlan) (*models.Order, error) {
	if s.opts.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TxTimeout)
		defer cancel()
	}

	now := s.now().UTC()
	var created *models.Order

	err := s.store.InTx(ctx, func(tx CheckoutTx) error {
		for _, d := range plan.Decrements {
			var (
				ok  bool
				err error
			)
			if d.VariantID != nil {
				ok, err = tx.DecrementVariantStock(ctx, d.ProductID, *d.VariantID, d.Quantity)
			} else {
				ok, err = tx.DecrementProductStock(ctx, d.ProductID, d.Quantity)
			}
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return ErrStockConflict
			}
		}

		order := &models.Order{
			FullName:      strings.TrimSpace(in.FullName),
			Email:         strings.TrimSpace(in.Email),
			Address:       strings.TrimSpace(in.Address),
			City:          strings.TrimSpace(in.City),
			PostalCode:    strings.TrimSpace(in.PostalCode),
			Phone:         strings.TrimSpace(in.Phone),
			PaymentMethod: in.PaymentMethod,
			TotalCents:    plan.TotalCents,
			CreatedAt:     now,
		}

		items := make([]models.OrderItem, 0, len(plan.Items))
		for i, it := range plan.Items {
			items = append(items, models.OrderItem{
				Position:   int32(i),
				ProductID:  it.ProductID,
				VariantID:  it.VariantID,
				Quantity:   it.Quantity,
				PriceCents: it.PriceCents,
				CreatedAt:  now,
			})
		}

		if err := tx.CreateOrder(ctx, order, items); err != nil {
			return err
		}

		full, err := tx.GetOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		if full == nil {
			return fmt.Errorf("reload order: %w", ErrNotFound)
		}
		created = full
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// invalidateCatalog сбрасывает страницы каталога с устаревшими остатками.
// Заказ уже создан, поэтому ошибка только логируется.
func (s *CheckoutService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelByPrefix(ctx, catalogCachePrefix); err != nil {
		s.log.Warn("не удалось сбросить кэш каталога после заказа", zap.Error(err))
	}
}

// dispatchConfirmation отвязывает отправку от запроса: отмена ctx клиента не
// прерывает письмо, но время отправки ограничено NotifyTimeout.
func (s *CheckoutService) dispatchConfirmation(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}

	n := BuildConfirmation(order)
	detached := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("паника при отправке подтверждения заказа",
					zap.String("order_id", order.ID.String()), zap.Any("panic", r))
				s.metrics.ObserveNotificationFailure()
			}
		}()

		nctx, cancel := context.WithTimeout(detached, s.opts.NotifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(nctx, n); err != nil {
			s.log.Error("не удалось отправить подтверждение заказа",
				zap.String("order_id", order.ID.String()),
				zap.String("to", n.To),
				zap.Error(err))
			s.metrics.ObserveNotificationFailure()
			return
		}
		s.log.Debug("подтверждение заказа отправлено", zap.String("order_id", order.ID.String()))
	}()
}

// Wait дожидается всех незавершённых отправок (graceful shutdown).
func (s *CheckoutService) Wait() {
	s.pending.Wait()
}

func checkoutResult(err error) string {
	var (
		refErr   *ReferenceError
		stockErr *StockError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedPayment):
		return "invalid"
	case errors.As(err, &refErr):
		return "reference"
	case errors.As(err, &stockErr):
		return "insufficient"
	case errors.Is(err, ErrStockConflict):
		return "conflict"
	default:
		return "error"
	}
}
