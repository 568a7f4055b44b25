package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

const EventOrderPlaced = "OrderPlaced"

// OrderPlaced is published to the order feed after a successful checkout.
type OrderPlaced struct {
	OrderID   string            `json:"order_id"`
	Items     []store.OrderItem `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Total     decimal.Decimal   `json:"total"`
	Source    string            `json:"source"`
	PlacedAt  time.Time         `json:"placed_at"`
	EventType string            `json:"event_type"`
}
