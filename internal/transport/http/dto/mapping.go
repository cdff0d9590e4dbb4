package dto

import (
	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/shopspring/decimal"
)

// PriceToCents переводит десятичную цену в центы; ok=false при отрицательной
// цене или более чем двух знаках после запятой.
func PriceToCents(p decimal.Decimal) (int64, bool) {
	if p.IsNegative() {
		return 0, false
	}
	shifted := p.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, false
	}
	return shifted.IntPart(), true
}

func FromCategory(c *models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID.String(), Name: c.Name, CreatedAt: c.CreatedAt}
}

func FromCategories(list []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, FromCategory(&list[i]))
	}
	return out
}

func FromVariant(v *models.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:        v.ID.String(),
		SizeType:  string(v.SizeType),
		SizeValue: v.SizeValue,
		Stock:     v.Stock,
	}
}

func FromProduct(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.String(),
		CategoryID:  p.CategoryID.String(),
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       service.FormatCents(p.PriceCents),
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		Variants:    make([]VariantResponse, 0, len(p.Variants)),
		CreatedAt:   p.CreatedAt,
	}
	if p.Category != nil {
		c := FromCategory(p.Category)
		resp.Category = &c
	}
	for i := range p.Variants {
		resp.Variants = append(resp.Variants, FromVariant(&p.Variants[i]))
	}
	return resp
}

func FromProducts(list []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, FromProduct(&list[i]))
	}
	return out
}

func FromOrder(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID.String(),
		FullName:      o.FullName,
		Email:         o.Email,
		Address:       o.Address,
		City:          o.City,
		PostalCode:    o.PostalCode,
		Phone:         o.Phone,
		PaymentMethod: string(o.PaymentMethod),
		Total:         service.FormatCents(o.TotalCents),
		TotalCents:    o.TotalCents,
		IsSent:        o.IsSent,
		SentAt:        o.SentAt,
		CreatedAt:     o.CreatedAt,
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		item := OrderItemResponse{
			ID:         it.ID.String(),
			Quantity:   it.Quantity,
			Price:      service.FormatCents(it.PriceCents),
			PriceCents: it.PriceCents,
		}
		if it.Product != nil {
			item.Product = &ProductSummary{ID: it.Product.ID.String(), Name: it.Product.Name, ImageURL: it.Product.ImageURL}
		}
		if it.Variant != nil {
			v := FromVariant(it.Variant)
			item.Variant = &v
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func FromOrders(list []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, FromOrder(&list[i]))
	}
	return out
}

func FromUser(u *models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}
