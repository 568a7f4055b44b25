// Package orderfeed tails checkout events for the back office: every placed
// order becomes a structured log line the shop operator can follow.
package orderfeed

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/checkout"
)

// Handler processes order feed events from Kafka.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// HandleEvent unmarshals one event and logs placed orders. Events of other
// types are ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event checkout.OrderPlaced
	if err := json.Unmarshal(value, &event); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal order event")
		return err
	}
	if event.EventType != checkout.EventOrderPlaced {
		return nil
	}

	items := make([]string, 0, len(event.Items))
	for _, item := range event.Items {
		items = append(items, item.Name)
	}

	log.Info().
		Str("order_id", event.OrderID).
		Str("source", event.Source).
		Strs("items", items).
		Str("subtotal", event.Subtotal.StringFixed(2)).
		Str("total", event.Total.StringFixed(2)).
		Time("placed_at", event.PlacedAt).
		Msg("order placed")
	return nil
}
