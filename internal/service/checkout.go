package service

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
)

type LineItem struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int32
}

type CheckoutInput struct {
	FullName      string
	Email         string
	Address       string
	City          string
	PostalCode    string
	Phone         string
	PaymentMethod models.PaymentMethod
	Items         []LineItem
}

// PlannedItem: строка заказа с ценой, зафиксированной из каталога.
type PlannedItem struct {
	ProductID  uuid.UUID
	VariantID  *uuid.UUID
	Quantity   int32
	PriceCents int64
	Name       string
	Size       string
}

// StockDecrement: суммарное списание по одной строке остатков.
// VariantID == nil означает агрегированный остаток товара.
type StockDecrement struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int32
}

type CheckoutPlan struct {
	Items      []PlannedItem
	Decrements []StockDecrement
	TotalCents int64
}

type stockKey struct {
	productID uuid.UUID
	variantID uuid.UUID // uuid.Nil: остаток товара
}

type stockDemand struct {
	key       stockKey
	requested int64
	available int32
	name      string
	size      string
}

// distinctIDs собирает уникальные id товаров и вариантов в порядке появления.
func distinctIDs(items []LineItem) (productIDs, variantIDs []uuid.UUID) {
	seenP := make(map[uuid.UUID]struct{}, len(items))
	seenV := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seenP[it.ProductID]; !ok {
			seenP[it.ProductID] = struct{}{}
			productIDs = append(productIDs, it.ProductID)
		}
		if it.VariantID != nil {
			if _, ok := seenV[*it.VariantID]; !ok {
				seenV[*it.VariantID] = struct{}{}
				variantIDs = append(variantIDs, *it.VariantID)
			}
		}
	}
	return productIDs, variantIDs
}

// BuildCheckoutPlan проверяет корзину по снимку каталога и ничего не пишет.
// Количество по одной строке остатков суммируется до сравнения, так что две
// позиции одного варианта не могут вместе превысить остаток.
func BuildCheckoutPlan(items []LineItem, products []models.Product, variants []models.ProductVariant) (*CheckoutPlan, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productMap := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	variantMap := make(map[uuid.UUID]*models.ProductVariant, len(variants))
	for i := range variants {
		variantMap[variants[i].ID] = &variants[i]
	}

	plan := &CheckoutPlan{Items: make([]PlannedItem, 0, len(items))}
	demands := make(map[stockKey]*stockDemand, len(items))
	var order []stockKey

	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: %w", i, ErrInvalidQuantity)
		}

		product, ok := productMap[it.ProductID]
		if !ok {
			return nil, &ReferenceError{Kind: "product", ID: it.ProductID}
		}

		key := stockKey{productID: product.ID}
		available := product.Stock
		size := ""

		if it.VariantID != nil {
			variant, ok := variantMap[*it.VariantID]
			if !ok || variant.ProductID != product.ID {
				return nil, &ReferenceError{Kind: "variant", ID: *it.VariantID, ProductID: product.ID}
			}
			key.variantID = variant.ID
			available = variant.Stock
			size = variant.SizeValue
		}

		d, ok := demands[key]
		if !ok {
			d = &stockDemand{key: key, available: available, name: product.Name, size: size}
			demands[key] = d
			order = append(order, key)
		}
		d.requested += int64(it.Quantity)

		plan.Items = append(plan.Items, PlannedItem{
			ProductID:  product.ID,
			VariantID:  it.VariantID,
			Quantity:   it.Quantity,
			PriceCents: product.PriceCents,
			Name:       product.Name,
			Size:       size,
		})
		plan.TotalCents += product.PriceCents * int64(it.Quantity)
	}

	for _, key := range order {
		d := demands[key]
		if d.requested > int64(d.available) {
			e := &StockError{
				ProductID: key.productID,
				Name:      d.name,
				Size:      d.size,
				Requested: d.requested,
				Available: d.available,
			}
			if key.variantID != uuid.Nil {
				vid := key.variantID
				e.VariantID = &vid
			}
			return nil, e
		}
	}

	// Фиксированный порядок строк: параллельные транзакции берут блокировки
	// в одной последовательности и не упираются в deadlock.
	sort.Slice(order, func(i, j int) bool {
		if c := bytes.Compare(order[i].variantID[:], order[j].variantID[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(order[i].productID[:], order[j].productID[:]) < 0
	})

	plan.Decrements = make([]StockDecrement, 0, len(order))
	for _, key := range order {
		dec := StockDecrement{ProductID: key.productID, Quantity: int32(demands[key].requested)}
		if key.variantID != uuid.Nil {
			vid := key.variantID
			dec.VariantID = &vid
		}
		plan.Decrements = append(plan.Decrements, dec)
	}

	return plan, nil
}

func validateCheckoutInput(in *CheckoutInput) error {
	if len(in.Items) == 0 {
		return ErrEmptyCart
	}

	required := []struct{ name, value string }{
		{"fullName", in.FullName},
		{"email", in.Email},
		{"address", in.Address},
		{"city", in.City},
		{"postalCode", in.PostalCode},
		{"phone", in.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCOD
	}
	if in.PaymentMethod != models.PaymentCOD {
		return fmt.Errorf("%w: %s", ErrUnsupportedPayment, in.PaymentMethod)
	}
	return nil
}
