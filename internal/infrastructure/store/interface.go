package store

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockDecrement is one entry of an atomic batch stock update.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// DocumentStore is the narrow interface over the hosted document database.
//
// DecrementStock must be all-or-nothing: if any single decrement cannot be
// applied (missing product, not enough stock, backend failure), none of the
// decrements in the batch may be applied.
type DocumentStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	PutProduct(ctx context.Context, p Product) error
	AddStock(ctx context.Context, productID string, quantity int) error
	DecrementStock(ctx context.Context, decs []StockDecrement) error
	AddOrder(ctx context.Context, o Order) (*Order, error)
}
