// Package discount resolves promotional codes against the static discount
// table and applies them to cart subtotals.
package discount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Discount is an applied promotional code. Rate is a fraction in [0,1).
type Discount struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"value"`
}

// codes is static configuration, not a remote lookup.
var codes = map[string]decimal.Decimal{
	"BIENVENIDA": decimal.New(10, -2),
	"PROMO20":    decimal.New(20, -2),
	"VIP":        decimal.New(15, -2),
}

// Resolve normalizes the user-supplied code (trim, upper-case) and looks it
// up in the table. ok is false for unknown codes.
func Resolve(code string) (*Discount, bool) {
	clean := strings.ToUpper(strings.TrimSpace(code))
	rate, ok := codes[clean]
	if !ok {
		return nil, false
	}
	return &Discount{Code: clean, Rate: rate}, true
}

// Total returns subtotal*(1-rate) when a discount is applied, else the
// subtotal unchanged. Full precision is kept; rounding is a display concern.
func Total(subtotal decimal.Decimal, d *Discount) decimal.Decimal {
	if d == nil {
		return subtotal
	}
	return subtotal.Sub(d.Amount(subtotal))
}

// Amount returns the monetary reduction the discount takes off a subtotal.
func (d *Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(d.Rate)
}
