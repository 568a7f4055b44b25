package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.PutProduct(ctx, Product{ID: "A", Name: "Silla", Price: decimal.NewFromInt(100), Stock: 10}))
	require.NoError(t, m.PutProduct(ctx, Product{ID: "B", Name: "Mesa", Price: decimal.NewFromInt(250), Stock: 3}))
	return m
}

func TestMemoryStore_GetProduct(t *testing.T) {
	m := seedMemoryStore(t)

	p, err := m.GetProduct(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Silla", p.Name)

	_, err = m.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_ListProducts_InsertionOrder(t *testing.T) {
	m := seedMemoryStore(t)

	products, err := m.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].ID)
	assert.Equal(t, "B", products[1].ID)
}

func TestMemoryStore_PutProduct_Overwrites(t *testing.T) {
	m := seedMemoryStore(t)

	err := m.PutProduct(context.Background(), Product{ID: "A", Name: "Silla Nueva", Price: decimal.NewFromInt(120), Stock: 7})
	require.NoError(t, err)

	products, err := m.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2, "overwrite must not duplicate")
	assert.Equal(t, "Silla Nueva", products[0].Name)
}

func TestMemoryStore_AddStock(t *testing.T) {
	m := seedMemoryStore(t)

	require.NoError(t, m.AddStock(context.Background(), "A", 5))
	p, err := m.GetProduct(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Stock)

	assert.ErrorIs(t, m.AddStock(context.Background(), "missing", 5), ErrProductNotFound)
}

func TestMemoryStore_DecrementStock(t *testing.T) {
	m := seedMemoryStore(t)

	err := m.DecrementStock(context.Background(), []StockDecrement{
		{ProductID: "A", Quantity: 4},
		{ProductID: "B", Quantity: 2},
	})
	require.NoError(t, err)

	a, _ := m.GetProduct(context.Background(), "A")
	b, _ := m.GetProduct(context.Background(), "B")
	assert.Equal(t, 6, a.Stock)
	assert.Equal(t, 1, b.Stock)
}

func TestMemoryStore_DecrementStock_AllOrNothing(t *testing.T) {
	m := seedMemoryStore(t)

	// Second entry exceeds stock; the first must not be applied either.
	err := m.DecrementStock(context.Background(), []StockDecrement{
		{ProductID: "A", Quantity: 1},
		{ProductID: "B", Quantity: 100},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	a, _ := m.GetProduct(context.Background(), "A")
	b, _ := m.GetProduct(context.Background(), "B")
	assert.Equal(t, 10, a.Stock)
	assert.Equal(t, 3, b.Stock)
}

func TestMemoryStore_DecrementStock_UnknownProduct(t *testing.T) {
	m := seedMemoryStore(t)

	err := m.DecrementStock(context.Background(), []StockDecrement{
		{ProductID: "missing", Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_AddOrder(t *testing.T) {
	m := seedMemoryStore(t)

	order := Order{
		Items:    []OrderItem{{ProductID: "A", Name: "Silla", Price: decimal.NewFromInt(100), Quantity: 2, Subtotal: decimal.NewFromInt(200)}},
		Subtotal: decimal.NewFromInt(200),
		Total:    decimal.NewFromInt(200),
		Status:   OrderStatusPending,
		Source:   OrderSourceWeb,
	}

	stored, err := m.AddOrder(context.Background(), order)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	orders := m.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, stored.ID, orders[0].ID)
}
