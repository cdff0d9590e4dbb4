package service

import (
	"errors"
	"fmt"

	"github.com/fayiz2005/Kaze/internal/repository"

	"github.com/google/uuid"
)

// Репозитории кодов возвращают свой ErrNotFound вместо nil, nil.
var errRepoNotFound = repository.ErrNotFound

var (
	ErrEmptyCart          = errors.New("no items provided")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnsupportedPayment = errors.New("unsupported payment method")
	ErrReferenceNotFound  = errors.New("referenced item not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	// ErrStockConflict: остаток изменился между проверкой и списанием.
	ErrStockConflict = errors.New("stock changed during checkout, retry")

	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInUse                = errors.New("resource is referenced and cannot be deleted")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyRequests      = errors.New("too many requests")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)

// ReferenceError: ссылка из корзины на несуществующий товар или вариант.
type ReferenceError struct {
	Kind      string // "product" | "variant"
	ID        uuid.UUID
	ProductID uuid.UUID // для variant: товар, к которому он должен относиться
}

func (e *ReferenceError) Error() string {
	if e.Kind == "variant" {
		return fmt.Sprintf("variant not found: %s (product %s)", e.ID, e.ProductID)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

type StockError struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Name      string
	Size      string
	Requested int64
	Available int32
}

func (e *StockError) Error() string {
	item := e.Name
	if e.Size != "" {
		item = fmt.Sprintf("%s (%s)", e.Name, e.Size)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", item, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
