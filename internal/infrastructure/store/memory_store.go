package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps the catalog and orders in memory. Used for local
// development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	ordering []string // product IDs in insertion order
	orders   []Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]Product),
	}
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]Product, 0, len(m.ordering))
	for _, id := range m.ordering {
		products = append(products, m.products[id])
	}
	return products, nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (m *MemoryStore) PutProduct(ctx context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		m.ordering = append(m.ordering, p.ID)
	}
	m.products[p.ID] = p
	return nil
}

func (m *MemoryStore) AddStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += quantity
	m.products[productID] = p
	return nil
}

// DecrementStock applies the batch atomically: every decrement is validated
// against current stock before any product is touched.
func (m *MemoryStore) DecrementStock(ctx context.Context, decs []StockDecrement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, dec := range decs {
		p, ok := m.products[dec.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, dec.ProductID)
		}
		if p.Stock < dec.Quantity {
			return fmt.Errorf("%w: product %s has %d, need %d", ErrInsufficientStock, dec.ProductID, p.Stock, dec.Quantity)
		}
	}

	for _, dec := range decs {
		p := m.products[dec.ProductID]
		p.Stock -= dec.Quantity
		m.products[dec.ProductID] = p
	}
	return nil
}

func (m *MemoryStore) AddOrder(ctx context.Context, o Order) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.ID = uuid.New().String()
	o.CreatedAt = time.Now().UTC()
	m.orders = append(m.orders, o)
	return &o, nil
}

// Orders returns a copy of all stored orders. Test helper.
func (m *MemoryStore) Orders() []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Order, len(m.orders))
	copy(out, m.orders)
	return out
}
