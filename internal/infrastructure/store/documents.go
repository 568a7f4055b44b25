package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status and source tags as written to the document store.
const (
	OrderStatusPending = "pending"
	OrderSourceWeb     = "web_ecommerce"
)

// Product is a catalog document. Owned by the catalog; the cart treats it
// as immutable.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Stock       int             `json:"stock"`
}

// OrderItem is a line-item snapshot frozen into an order at checkout time.
type OrderItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDiscount is the discount snapshot embedded in an order.
type OrderDiscount struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"value"`
}

// Order is an immutable order document. It is written once at checkout and
// never read back by this application.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        *OrderDiscount  `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	Source          string          `json:"source"`
	CreatedAt       time.Time       `json:"created_at"`
	CustomerMessage string          `json:"customer_message"`
}
