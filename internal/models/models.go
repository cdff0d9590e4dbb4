package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Category) TableName() string { return "categories" }

type SizeType string

const (
	SizeStandard SizeType = "STANDARD"
	SizeWaist    SizeType = "WAIST"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:text"`
	PriceCents  int64     `gorm:"not null;default:0"`
	// Остаток без учёта размеров: используется только для позиций без варианта.
	Stock int32 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Category *Category        `gorm:"foreignKey:CategoryID"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	SizeType  SizeType  `gorm:"type:text;not null;default:'STANDARD'"`
	SizeValue string    `gorm:"type:text;not null"`
	Stock     int32     `gorm:"not null;default:0"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type PaymentMethod string

// Единственный поддерживаемый способ оплаты: наложенный платёж.
const PaymentCOD PaymentMethod = "COD"

type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName      string        `gorm:"type:text;not null"`
	Email         string        `gorm:"type:text;not null;index"`
	Address       string        `gorm:"type:text;not null"`
	City          string        `gorm:"type:text;not null"`
	PostalCode    string        `gorm:"type:text;not null"`
	Phone         string        `gorm:"type:text;not null"`
	PaymentMethod PaymentMethod `gorm:"type:text;not null;default:'COD'"`
	TotalCents    int64         `gorm:"not null;default:0"`

	IsSent bool       `gorm:"not null;default:false;index"`
	SentAt *time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariantID *uuid.UUID `gorm:"type:uuid;index"`
	Quantity  int32      `gorm:"not null"`
	// Цена за единицу на момент заказа; дальше каталог на неё не влияет.
	PriceCents int64 `gorm:"not null"`
	// Position: порядок позиции в корзине; created_at у всех позиций заказа общий.
	Position int32 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Product *Product        `gorm:"foreignKey:ProductID"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}

func (OrderItem) TableName() string { return "order_items" }

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"not null"` // уникальность через индекс lower(email)
	Password  string    `gorm:"not null"` // bcrypt hash
	Role      Role      `gorm:"type:text;not null;default:'ADMIN';index"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string { return "users" }

type AdminInvite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"not null;index"`
	Role      Role      `gorm:"type:text;not null;default:'ADMIN'"`
	CodeHash  string    `gorm:"not null;index"`
	InvitedBy uuid.UUID `gorm:"type:uuid;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Consumed  bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (AdminInvite) TableName() string { return "admin_invites" }

type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Email     string    `gorm:"not null"`
	CodeHash  string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Consumed  bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }
