package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type VariantResponse struct {
	ID        string `json:"id"`
	SizeType  string `json:"sizeType"`
	SizeValue string `json:"sizeValue"`
	Stock     int32  `json:"stock"`
}

// ProductSummary: товар внутри позиции заказа.
type ProductSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type ProductResponse struct {
	ID          string            `json:"id"`
	CategoryID  string            `json:"categoryId"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl"`
	Price       string            `json:"price"`
	PriceCents  int64             `json:"priceCents"`
	Stock       int32             `json:"stock"`
	Variants    []VariantResponse `json:"variants"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type ProductListResponse struct {
	Items  []ProductResponse `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type ProductListQuery struct {
	Query      string `form:"q"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Limit      int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Offset     int    `form:"offset" binding:"omitempty,gte=0"`
}

type VariantRequest struct {
	SizeType  string `json:"sizeType" binding:"required,oneof=STANDARD WAIST"`
	SizeValue string `json:"sizeValue" binding:"required"`
	Stock     int32  `json:"stock" binding:"gte=0"`
}

// CreateProductRequest: цена приходит десятичной строкой или числом ("19.99").
type CreateProductRequest struct {
	CategoryID  string           `json:"categoryId" binding:"required,uuid"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl" binding:"omitempty,url"`
	Price       decimal.Decimal  `json:"price"`
	Stock       int32            `json:"stock" binding:"gte=0"`
	Variants    []VariantRequest `json:"variants" binding:"required,min=1,dive"`
}

type SetVariantStockRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	VariantID string `json:"variantId" binding:"required,uuid"`
	Stock     *int32 `json:"stock" binding:"required,gte=0"`
}

type SetStockRequest struct {
	Stock *int32 `json:"stock" binding:"required,gte=0"`
}
