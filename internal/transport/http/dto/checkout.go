package dto

import (
	"time"
)

type CheckoutItem struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	VariantID *string `json:"variantId" binding:"omitempty,uuid"`
	Quantity  int32   `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest повторяет схему формы оформления заказа.
// Пустой список позиций отклоняет сервис; без paymentMethod заказ оформляется
// наложенным платежом.
type CheckoutRequest struct {
	FullName      string         `json:"fullName" binding:"required"`
	Email         string         `json:"email" binding:"required,email"`
	Address       string         `json:"address" binding:"required"`
	City          string         `json:"city" binding:"required"`
	PostalCode    string         `json:"postalCode" binding:"required"`
	Phone         string         `json:"phone" binding:"required,min=11"`
	PaymentMethod string         `json:"paymentMethod" binding:"omitempty,oneof=COD"`
	Items         []CheckoutItem `json:"items" binding:"dive"`
}

type OrderItemResponse struct {
	ID         string           `json:"id"`
	Product    *ProductSummary  `json:"product,omitempty"`
	Variant    *VariantResponse `json:"variant,omitempty"`
	Quantity   int32            `json:"quantity"`
	Price      string           `json:"price"`
	PriceCents int64            `json:"priceCents"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	FullName      string              `json:"fullName"`
	Email         string              `json:"email"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postalCode"`
	Phone         string              `json:"phone"`
	PaymentMethod string              `json:"paymentMethod"`
	Total         string              `json:"total"`
	TotalCents    int64               `json:"totalCents"`
	IsSent        bool                `json:"isSent"`
	SentAt        *time.Time          `json:"sentAt"`
	CreatedAt     time.Time           `json:"createdAt"`
	Items         []OrderItemResponse `json:"items"`
}
