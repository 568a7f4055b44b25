package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

// MockDocumentStore is a mock implementation of store.DocumentStore for
// testing. It behaves like the in-memory store and records every call, with
// injectable errors and callbacks.
type MockDocumentStore struct {
	mu       sync.Mutex
	products map[string]store.Product
	orders   []store.Order

	DecrementCalls [][]store.StockDecrement
	AddOrderCalls  []store.Order

	DecrementErr      error
	AddOrderErr       error
	DecrementCallback func(ctx context.Context, decs []store.StockDecrement) error
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		products: make(map[string]store.Product),
	}
}

// SeedProduct puts a product directly into the mock's catalog.
func (m *MockDocumentStore) SeedProduct(p store.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MockDocumentStore) ListProducts(ctx context.Context) ([]store.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := make([]store.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

func (m *MockDocumentStore) GetProduct(ctx context.Context, id string) (*store.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return &p, nil
}

func (m *MockDocumentStore) PutProduct(ctx context.Context, p store.Product) error {
	m.SeedProduct(p)
	return nil
}

func (m *MockDocumentStore) AddStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return store.ErrProductNotFound
	}
	p.Stock += quantity
	m.products[productID] = p
	return nil
}

func (m *MockDocumentStore) DecrementStock(ctx context.Context, decs []store.StockDecrement) error {
	m.mu.Lock()
	m.DecrementCalls = append(m.DecrementCalls, decs)
	callback := m.DecrementCallback
	m.mu.Unlock()

	if callback != nil {
		if err := callback(ctx, decs); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DecrementErr != nil {
		return m.DecrementErr
	}

	for _, dec := range decs {
		p, ok := m.products[dec.ProductID]
		if !ok {
			return store.ErrProductNotFound
		}
		if p.Stock < dec.Quantity {
			return store.ErrInsufficientStock
		}
	}
	for _, dec := range decs {
		p := m.products[dec.ProductID]
		p.Stock -= dec.Quantity
		m.products[dec.ProductID] = p
	}
	return nil
}

func (m *MockDocumentStore) AddOrder(ctx context.Context, o store.Order) (*store.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddOrderCalls = append(m.AddOrderCalls, o)

	if m.AddOrderErr != nil {
		return nil, m.AddOrderErr
	}

	o.ID = uuid.New().String()
	o.CreatedAt = time.Now().UTC()
	m.orders = append(m.orders, o)
	return &o, nil
}

// Orders returns all orders accepted by the mock.
func (m *MockDocumentStore) Orders() []store.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]store.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

// Stock returns the current stock for a product, or -1 if absent.
func (m *MockDocumentStore) Stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return -1
	}
	return p.Stock
}
