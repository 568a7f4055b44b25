package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

func orderItems() []store.OrderItem {
	return []store.OrderItem{
		{
			ProductID: "A",
			Name:      "Silla Plegable",
			Price:     decimal.NewFromInt(100),
			Quantity:  2,
			Subtotal:  decimal.NewFromInt(200),
		},
	}
}

func TestBuildSummary_NoDiscount(t *testing.T) {
	msg := BuildSummary("abc123def456", orderItems(), decimal.NewFromInt(200), nil, decimal.NewFromInt(200))

	assert.Contains(t, msg, "Hola HomeMart! 👋 Nuevo pedido web (ID: abc123):")
	assert.Contains(t, msg, "▪️ 2x Silla Plegable - C$200")
	assert.Contains(t, msg, "Subtotal: C$200.00")
	assert.NotContains(t, msg, "Descuento")
	assert.Contains(t, msg, "*TOTAL: C$200.00*")
}

func TestBuildSummary_WithDiscount(t *testing.T) {
	d := &store.OrderDiscount{Code: "VIP", Rate: decimal.New(15, -2)}
	total := decimal.NewFromInt(170)

	msg := BuildSummary("abc123def456", orderItems(), decimal.NewFromInt(200), d, total)

	assert.Contains(t, msg, "Descuento (VIP): -C$30.00")
	assert.Contains(t, msg, "*TOTAL: C$170.00*")
}

func TestBuildSummary_ShortOrderID(t *testing.T) {
	msg := BuildSummary("ab12", orderItems(), decimal.NewFromInt(200), nil, decimal.NewFromInt(200))
	assert.Contains(t, msg, "(ID: ab12)")
}

func TestBuildSummary_Deterministic(t *testing.T) {
	a := BuildSummary("abc123def456", orderItems(), decimal.NewFromInt(200), nil, decimal.NewFromInt(200))
	b := BuildSummary("abc123def456", orderItems(), decimal.NewFromInt(200), nil, decimal.NewFromInt(200))
	assert.Equal(t, a, b)
}

func TestLink_EncodesMessage(t *testing.T) {
	message := "Hola HomeMart! 👋 línea\ncon saltos & símbolos"
	link := Link("50584016969", message)

	assert.True(t, strings.HasPrefix(link, "https://wa.me/50584016969?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	values, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, message, values.Get("text"), "message must round-trip through the query string")
}
