package http

import (
	"context"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/google/uuid"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, in service.CheckoutInput) (*models.Order, error)
}

type CatalogUseCase interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, f service.ProductFilter) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetVariantStock(ctx context.Context, productID, variantID uuid.UUID, stock int32) (*models.ProductVariant, error)
	SetProductStock(ctx context.Context, productID uuid.UUID, stock int32) (*models.Product, error)
}

type OrderUseCase interface {
	ListDashboard(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ToggleFulfillment(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type AuthUseCase interface {
	Authenticator
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	InviteAdmin(ctx context.Context, email string, role models.Role) (*models.AdminInvite, error)
	AcceptInvite(ctx context.Context, email, code, password string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type Authenticator interface {
	Authenticate(ctx context.Context, access string) (*service.Claims, error)
}
