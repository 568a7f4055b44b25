// Package whatsapp renders order summaries and builds the wa.me deep link
// used to hand a confirmed order over to the shop's WhatsApp line.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

const orderIDPrefixLen = 6

// BuildSummary renders the human-readable order summary sent through the
// WhatsApp link. Pure function of its inputs.
func BuildSummary(orderID string, items []store.OrderItem, subtotal decimal.Decimal, d *store.OrderDiscount, total decimal.Decimal) string {
	shortID := orderID
	if len(shortID) > orderIDPrefixLen {
		shortID = shortID[:orderIDPrefixLen]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola HomeMart! 👋 Nuevo pedido web (ID: %s):\n\n", shortID)

	for _, item := range items {
		fmt.Fprintf(&b, "▪️ %dx %s - C$%s\n", item.Quantity, item.Name, item.Subtotal.String())
	}

	fmt.Fprintf(&b, "\nSubtotal: C$%s", subtotal.StringFixed(2))

	if d != nil {
		amount := subtotal.Mul(d.Rate)
		fmt.Fprintf(&b, "\nDescuento (%s): -C$%s", d.Code, amount.StringFixed(2))
	}

	fmt.Fprintf(&b, "\n\n*TOTAL: C$%s*", total.StringFixed(2))
	return b.String()
}

// Link builds the wa.me URI carrying the pre-filled message. Opening it is
// the caller's responsibility.
func Link(phone, message string) string {
	q := url.Values{"text": {message}}
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + phone,
		RawQuery: q.Encode(),
	}
	return u.String()
}
