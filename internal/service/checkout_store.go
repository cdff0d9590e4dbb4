package service

import (
	"context"
	"fmt"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/repository"

	"github.com/google/uuid"
)

// CheckoutStore: хранилище, которое нужно оформлению заказа.
type CheckoutStore interface {
	BatchGetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	BatchGetVariants(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error)
	// InTx: любая ошибка fn откатывает и списания, и заказ.
	InTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

type CheckoutTx interface {
	// Decrement* возвращают false, если остатка уже не хватает.
	DecrementVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int32) (bool, error)
	DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int32) (bool, error)
	CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type repoCheckoutStore struct {
	repo *repository.Repository
}

func NewCheckoutStore(repo *repository.Repository) CheckoutStore {
	return &repoCheckoutStore{repo: repo}
}

func (s *repoCheckoutStore) BatchGetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.repo.Products.BatchGetByIDs(ctx, ids)
}

func (s *repoCheckoutStore) BatchGetVariants(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	return s.repo.Variants.BatchGetByIDs(ctx, ids)
}

func (s *repoCheckoutStore) InTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return fn(&repoCheckoutTx{repo: tx})
	})
}

type repoCheckoutTx struct {
	repo *repository.Repository
}

func (t *repoCheckoutTx) DecrementVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int32) (bool, error) {
	return t.repo.Variants.TryDecrementStock(ctx, productID, variantID, qty)
}

func (t *repoCheckoutTx) DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int32) (bool, error) {
	return t.repo.Products.TryDecrementStock(ctx, productID, qty)
}

func (t *repoCheckoutTx) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	if err := t.repo.Orders.Create(ctx, o); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
	}
	if err := t.repo.OrderItems.BulkCreate(ctx, items); err != nil {
		return fmt.Errorf("create order items: %w", err)
	}

	sum, err := t.repo.OrderItems.SumByOrder(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("sum order items: %w", err)
	}
	if sum != o.TotalCents {
		return fmt.Errorf("order total mismatch: header %d, items %d", o.TotalCents, sum)
	}
	return nil
}

func (t *repoCheckoutTx) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return t.repo.Orders.GetByID(ctx, id)
}
