package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarodlopez/homemartshop/internal/domain/cart"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store/mocks"
)

const testPhone = "50584016969"

func newTestOrchestrator() (*Orchestrator, *cart.Store, *mocks.MockDocumentStore) {
	docs := mocks.NewMockDocumentStore()
	docs.SeedProduct(store.Product{
		ID:       "A",
		Name:     "Silla Plegable",
		Price:    decimal.NewFromInt(100),
		Category: "Hogar",
		Stock:    10,
	})
	docs.SeedProduct(store.Product{
		ID:       "B",
		Name:     "Lámpara",
		Price:    decimal.NewFromInt(50),
		Category: "Hogar",
		Stock:    5,
	})

	cartStore := cart.New()
	return NewOrchestrator(docs, cartStore, testPhone), cartStore, docs
}

func addProduct(t *testing.T, cartStore *cart.Store, docs *mocks.MockDocumentStore, id string, times int) {
	t.Helper()
	p, err := docs.GetProduct(context.Background(), id)
	require.NoError(t, err)
	for i := 0; i < times; i++ {
		cartStore.Add(*p)
	}
}

// ============================================
// Empty Cart
// ============================================

func TestOrchestrator_Checkout_EmptyCartNoop(t *testing.T) {
	o, _, docs := newTestOrchestrator()

	result, err := o.Checkout(context.Background())

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, StateIdle, o.State(), "empty cart must not transition")
	assert.Empty(t, docs.DecrementCalls)
	assert.Empty(t, docs.AddOrderCalls)
}

// ============================================
// Success Path
// ============================================

func TestOrchestrator_Checkout_Success(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 2)
	require.True(t, cartStore.ApplyDiscountCode("VIP"))

	result, err := o.Checkout(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StateSucceeded, o.State())

	// Stock decremented by cart quantity, atomically in one batch.
	require.Len(t, docs.DecrementCalls, 1)
	require.Len(t, docs.DecrementCalls[0], 1)
	assert.Equal(t, "A", docs.DecrementCalls[0][0].ProductID)
	assert.Equal(t, 2, docs.DecrementCalls[0][0].Quantity)
	assert.Equal(t, 8, docs.Stock("A"))

	// Order snapshot.
	orders := docs.Orders()
	require.Len(t, orders, 1)
	order := orders[0]
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, store.OrderStatusPending, order.Status)
	assert.Equal(t, store.OrderSourceWeb, order.Source)
	assert.Equal(t, "Pedido desde Web", order.CustomerMessage)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "A", order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)))
	require.NotNil(t, order.Discount)
	assert.Equal(t, "VIP", order.Discount.Code)
	assert.Equal(t, "170.00", order.Total.StringFixed(2))

	// Handoff message and link.
	assert.Contains(t, result.Message, "2x Silla Plegable")
	assert.Contains(t, result.Message, "170.00")
	assert.True(t, strings.HasPrefix(result.Link, "https://wa.me/"+testPhone+"?text="))
	u, err := url.Parse(result.Link)
	require.NoError(t, err)
	values, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, result.Message, values.Get("text"))

	// Cart closes but keeps its contents.
	assert.False(t, cartStore.IsOpen())
	assert.Len(t, cartStore.Items(), 1)
	assert.NotNil(t, cartStore.Discount())
}

func TestOrchestrator_Checkout_MultipleItems(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 1)
	addProduct(t, cartStore, docs, "B", 3)

	result, err := o.Checkout(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, docs.DecrementCalls, 1)
	assert.Len(t, docs.DecrementCalls[0], 2)
	assert.Equal(t, 9, docs.Stock("A"))
	assert.Equal(t, 2, docs.Stock("B"))

	orders := docs.Orders()
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].Discount)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(250)))
}

// ============================================
// Failure Paths
// ============================================

func TestOrchestrator_Checkout_DecrementFails(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 2)
	docs.DecrementErr = errors.New("store offline")

	result, err := o.Checkout(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, StateFailed, o.State())

	// No order written, cart intact and still open.
	assert.Empty(t, docs.AddOrderCalls)
	assert.Equal(t, 10, docs.Stock("A"))
	assert.True(t, cartStore.IsOpen())
	require.Len(t, cartStore.Items(), 1)
	assert.Equal(t, 2, cartStore.Items()[0].Quantity)
}

func TestOrchestrator_Checkout_InsufficientStock(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "B", 5)
	cartStore.UpdateQuantity("B", 10) // more than the 5 in stock

	_, err := o.Checkout(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)
	assert.Equal(t, 5, docs.Stock("B"), "failed batch must not apply partially")
	assert.Empty(t, docs.AddOrderCalls)
}

func TestOrchestrator_Checkout_OrderWriteFailsAfterDecrement(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 2)
	docs.AddOrderErr = errors.New("write rejected")

	result, err := o.Checkout(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, StateFailed, o.State())

	// The decrement is not compensated when the order write fails.
	assert.Equal(t, 8, docs.Stock("A"))
	assert.Empty(t, docs.Orders())
	assert.True(t, cartStore.IsOpen())
}

func TestOrchestrator_Checkout_RetryAfterFailure(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 1)
	docs.DecrementErr = errors.New("store offline")

	_, err := o.Checkout(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, o.State())

	// Manual retry once the store recovers.
	docs.DecrementErr = nil
	result, err := o.Checkout(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StateSucceeded, o.State())
}

// ============================================
// Re-entry Guard
// ============================================

func TestOrchestrator_Checkout_ReentryBlockedWhileProcessing(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 1)

	var nestedErr error
	docs.DecrementCallback = func(ctx context.Context, decs []store.StockDecrement) error {
		// A second trigger while the first attempt is mid-flight.
		_, nestedErr = o.Checkout(ctx)
		return nil
	}

	result, err := o.Checkout(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.ErrorIs(t, nestedErr, ErrCheckoutInProgress)
	assert.Len(t, docs.AddOrderCalls, 1, "the nested attempt must not write")
}

func TestOrchestrator_Checkout_CartFrozenWhileProcessing(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	addProduct(t, cartStore, docs, "A", 1)

	docs.DecrementCallback = func(ctx context.Context, decs []store.StockDecrement) error {
		cartStore.UpdateQuantity("A", 5)
		cartStore.Remove("A")
		return nil
	}

	_, err := o.Checkout(context.Background())
	require.NoError(t, err)

	// The mid-flight mutations were ignored.
	require.Len(t, cartStore.Items(), 1)
	assert.Equal(t, 1, cartStore.Items()[0].Quantity)
}

// ============================================
// Event Publishing
// ============================================

type recordingPublisher struct {
	events []any
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestOrchestrator_Checkout_PublishesOrderPlaced(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	pub := &recordingPublisher{}
	o.WithPublisher(pub)
	addProduct(t, cartStore, docs, "A", 2)

	result, err := o.Checkout(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, pub.events, 1)
	event := pub.events[0].(OrderPlaced)
	assert.Equal(t, result.Order.ID, event.OrderID)
	assert.Equal(t, EventOrderPlaced, event.EventType)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(200)))
}

func TestOrchestrator_Checkout_NoEventOnFailure(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	pub := &recordingPublisher{}
	o.WithPublisher(pub)
	addProduct(t, cartStore, docs, "A", 1)
	docs.DecrementErr = errors.New("store offline")

	_, err := o.Checkout(context.Background())
	require.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestOrchestrator_Checkout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	o, cartStore, docs := newTestOrchestrator()
	pub := &recordingPublisher{err: errors.New("broker down")}
	o.WithPublisher(pub)
	addProduct(t, cartStore, docs, "A", 1)

	result, err := o.Checkout(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StateSucceeded, o.State())
}
