package service

import (
	"fmt"
	"strings"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/shopspring/decimal"
)

const confirmationSubject = "Order Confirmation"

// FormatCents: 5000 -> "50.00".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// BuildConfirmation собирает письмо по уже сохранённому заказу:
// цены берутся из позиций заказа, а не из каталога.
func BuildConfirmation(o *models.Order) Notification {
	var items strings.Builder
	for i, it := range o.Items {
		if i > 0 {
			items.WriteByte('\n')
		}
		name := "Unknown"
		if it.Product != nil {
			name = it.Product.Name
		}
		size := ""
		if it.Variant != nil {
			size = fmt.Sprintf(" (%s)", it.Variant.SizeValue)
		}
		fmt.Fprintf(&items, "• %s%s, Quantity: %d, Price: $%s", name, size, it.Quantity, FormatCents(it.PriceCents))
	}

	body := fmt.Sprintf(`Thank you for your order, %s!

Here are your order details:
- Address: %s, %s, %s
- Payment Method: %s
- Total: $%s

Items:
%s

We'll notify you when your order ships.

Thanks for shopping with us!
`, o.FullName, o.Address, o.City, o.PostalCode, o.PaymentMethod, FormatCents(o.TotalCents), items.String())

	return Notification{
		To:      o.Email,
		Subject: confirmationSubject,
		Body:    body,
	}
}
