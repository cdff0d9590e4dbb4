package http

import (
	"context"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/google/uuid"
)

type MockCheckout struct {
	CheckoutFunc func(ctx context.Context, in service.CheckoutInput) (*models.Order, error)
}

func (m *MockCheckout) Checkout(ctx context.Context, in service.CheckoutInput) (*models.Order, error) {
	return m.CheckoutFunc(ctx, in)
}

type MockCatalog struct {
	ListCategoriesFunc  func(ctx context.Context) ([]models.Category, error)
	CreateCategoryFunc  func(ctx context.Context, name string) (*models.Category, error)
	DeleteCategoryFunc  func(ctx context.Context, id uuid.UUID) error
	ListProductsFunc    func(ctx context.Context, f service.ProductFilter) ([]models.Product, int64, error)
	GetProductFunc      func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProductFunc   func(ctx context.Context, in service.ProductInput) (*models.Product, error)
	DeleteProductFunc   func(ctx context.Context, id uuid.UUID) error
	SetVariantStockFunc func(ctx context.Context, productID, variantID uuid.UUID, stock int32) (*models.ProductVariant, error)
	SetProductStockFunc func(ctx context.Context, productID uuid.UUID, stock int32) (*models.Product, error)
}

func (m *MockCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	return m.ListCategoriesFunc(ctx)
}
func (m *MockCatalog) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return m.CreateCategoryFunc(ctx, name)
}
func (m *MockCatalog) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.DeleteCategoryFunc(ctx, id)
}
func (m *MockCatalog) ListProducts(ctx context.Context, f service.ProductFilter) ([]models.Product, int64, error) {
	return m.ListProductsFunc(ctx, f)
}
func (m *MockCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return m.GetProductFunc(ctx, id)
}
func (m *MockCatalog) CreateProduct(ctx context.Context, in service.ProductInput) (*models.Product, error) {
	return m.CreateProductFunc(ctx, in)
}
func (m *MockCatalog) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.DeleteProductFunc(ctx, id)
}
func (m *MockCatalog) SetVariantStock(ctx context.Context, productID, variantID uuid.UUID, stock int32) (*models.ProductVariant, error) {
	return m.SetVariantStockFunc(ctx, productID, variantID, stock)
}
func (m *MockCatalog) SetProductStock(ctx context.Context, productID uuid.UUID, stock int32) (*models.Product, error) {
	return m.SetProductStockFunc(ctx, productID, stock)
}

type MockOrders struct {
	ListDashboardFunc     func(ctx context.Context) ([]models.Order, error)
	GetOrderFunc          func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ToggleFulfillmentFunc func(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

func (m *MockOrders) ListDashboard(ctx context.Context) ([]models.Order, error) {
	return m.ListDashboardFunc(ctx)
}
func (m *MockOrders) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.GetOrderFunc(ctx, id)
}
func (m *MockOrders) ToggleFulfillment(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.ToggleFulfillmentFunc(ctx, id)
}

type MockAuth struct {
	AuthenticateFunc         func(ctx context.Context, access string) (*service.Claims, error)
	LoginFunc                func(ctx context.Context, email, password string) (*service.LoginResult, error)
	InviteAdminFunc          func(ctx context.Context, email string, role models.Role) (*models.AdminInvite, error)
	AcceptInviteFunc         func(ctx context.Context, email, code, password string) (*models.User, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, email, code, newPassword string) error
}

func (m *MockAuth) Authenticate(ctx context.Context, access string) (*service.Claims, error) {
	return m.AuthenticateFunc(ctx, access)
}
func (m *MockAuth) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return m.LoginFunc(ctx, email, password)
}
func (m *MockAuth) InviteAdmin(ctx context.Context, email string, role models.Role) (*models.AdminInvite, error) {
	return m.InviteAdminFunc(ctx, email, role)
}
func (m *MockAuth) AcceptInvite(ctx context.Context, email, code, password string) (*models.User, error) {
	return m.AcceptInviteFunc(ctx, email, code, password)
}
func (m *MockAuth) RequestPasswordReset(ctx context.Context, email string) error {
	return m.RequestPasswordResetFunc(ctx, email)
}
func (m *MockAuth) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.ResetPasswordFunc(ctx, email, code, newPassword)
}
