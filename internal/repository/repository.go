package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB            *gorm.DB
	Categories    CategoryRepo
	Products      ProductRepo
	Variants      VariantRepo
	Orders        OrderRepo
	OrderItems    OrderItemRepo
	Users         UserRepo
	Invites       InviteRepo
	PasswordReset PasswordResetRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:            db,
		Categories:    NewCategoryRepo(db),
		Products:      NewProductRepo(db),
		Variants:      NewVariantRepo(db),
		Orders:        NewOrderRepo(db),
		OrderItems:    NewOrderItemRepo(db),
		Users:         NewUserRepo(db),
		Invites:       NewInviteRepo(db),
		PasswordReset: NewPasswordResetRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx: одна транзакция на весь набор репозиториев. Любая ошибка из fn
// (или отмена ctx) откатывает всё.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
