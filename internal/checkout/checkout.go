// Package checkout sequences the conversion of a cart into a persisted
// order: atomic stock decrement, order write, WhatsApp handoff link.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/domain/cart"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
	"github.com/jarodlopez/homemartshop/internal/whatsapp"
)

// State of the last/current checkout attempt.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// ErrCheckoutInProgress is returned when a checkout is triggered while a
// previous attempt is still processing.
var ErrCheckoutInProgress = errors.New("checkout already in progress")

const customerMessage = "Pedido desde Web"

// Publisher sends checkout events to the order feed.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Result is the outcome of a successful checkout. Link is an external-link
// intent: the caller decides how to open it.
type Result struct {
	Order   *store.Order `json:"order"`
	Message string       `json:"message"`
	Link    string       `json:"whatsapp_url"`
}

// Orchestrator runs checkout attempts against a cart and a document store.
// At most one attempt is processing at a time.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	docs      store.DocumentStore
	cart      *cart.Store
	phone     string
	publisher Publisher // optional
}

func NewOrchestrator(docs store.DocumentStore, cartStore *cart.Store, phone string) *Orchestrator {
	return &Orchestrator{
		state: StateIdle,
		docs:  docs,
		cart:  cartStore,
		phone: phone,
	}
}

// WithPublisher attaches an order feed publisher.
func (o *Orchestrator) WithPublisher(p Publisher) *Orchestrator {
	o.publisher = p
	return o
}

// State reports the orchestrator state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Checkout runs one attempt. An empty cart is a guarded no-op returning
// (nil, nil) with no state transition and no store writes.
//
// On success the cart visibility flag is closed; line items and discount are
// left in place. On failure the cart is untouched and still open so the user
// can retry. If the order write fails after the stock decrement succeeded,
// the decrement is not rolled back.
func (o *Orchestrator) Checkout(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.state == StateProcessing {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}

	snap := o.cart.Snapshot()
	if len(snap.Items) == 0 {
		o.mu.Unlock()
		return nil, nil
	}

	o.state = StateProcessing
	o.mu.Unlock()

	o.cart.Freeze()
	defer o.cart.Unfreeze()

	decs := make([]store.StockDecrement, 0, len(snap.Items))
	for _, li := range snap.Items {
		decs = append(decs, store.StockDecrement{ProductID: li.ID, Quantity: li.Quantity})
	}

	if err := o.docs.DecrementStock(ctx, decs); err != nil {
		o.setState(StateFailed)
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	order := buildOrder(snap)
	stored, err := o.docs.AddOrder(ctx, order)
	if err != nil {
		o.setState(StateFailed)
		return nil, fmt.Errorf("write order: %w", err)
	}

	message := whatsapp.BuildSummary(stored.ID, stored.Items, stored.Subtotal, stored.Discount, stored.Total)
	link := whatsapp.Link(o.phone, message)

	o.publishPlaced(ctx, stored)

	o.setState(StateSucceeded)
	o.cart.Unfreeze()
	o.cart.SetOpen(false)

	return &Result{Order: stored, Message: message, Link: link}, nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// publishPlaced emits the order feed event, best effort. A publish failure
// must not fail a checkout whose store writes already happened.
func (o *Orchestrator) publishPlaced(ctx context.Context, stored *store.Order) {
	if o.publisher == nil {
		return
	}

	event := OrderPlaced{
		OrderID:   stored.ID,
		Items:     stored.Items,
		Subtotal:  stored.Subtotal,
		Total:     stored.Total,
		Source:    stored.Source,
		PlacedAt:  stored.CreatedAt,
		EventType: EventOrderPlaced,
	}
	if err := o.publisher.Publish(ctx, stored.ID, event); err != nil {
		log.Warn().Err(err).Str("order_id", stored.ID).Msg("failed to publish order event")
	}
}

func buildOrder(snap cart.Snapshot) store.Order {
	items := make([]store.OrderItem, 0, len(snap.Items))
	for _, li := range snap.Items {
		items = append(items, store.OrderItem{
			ProductID: li.ID,
			Name:      li.Name,
			Price:     li.Price,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		})
	}

	var d *store.OrderDiscount
	if snap.Discount != nil {
		d = &store.OrderDiscount{Code: snap.Discount.Code, Rate: snap.Discount.Rate}
	}

	return store.Order{
		Items:           items,
		Subtotal:        snap.Subtotal,
		Discount:        d,
		Total:           snap.Total,
		Status:          store.OrderStatusPending,
		Source:          store.OrderSourceWeb,
		CustomerMessage: customerMessage,
	}
}
