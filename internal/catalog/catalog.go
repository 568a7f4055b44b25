// Package catalog is the read side of the product catalog: listing,
// category filtering and the product deep-link resolution.
package catalog

import (
	"context"
	"net/url"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

// AllCategories is the filter value meaning "no category filter". The
// storefront UI labels the pseudo-category "Todos".
const AllCategories = "Todos"

// DeepLinkParam is the query parameter that pre-opens a product detail view.
const DeepLinkParam = "product"

type Service struct {
	docs  store.DocumentStore
	cache *Cache // optional
}

func NewService(docs store.DocumentStore) *Service {
	return &Service{docs: docs}
}

// WithCache attaches a read-through cache for the product list.
func (s *Service) WithCache(c *Cache) *Service {
	s.cache = c
	return s
}

// List returns the catalog, optionally filtered by category. An empty
// category or AllCategories means no filter.
func (s *Service) List(ctx context.Context, category string) ([]store.Product, error) {
	products, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" || category == AllCategories {
		return products, nil
	}

	filtered := make([]store.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id string) (*store.Product, error) {
	return s.docs.GetProduct(ctx, id)
}

// Categories returns the distinct category names, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// ProductFromQuery resolves the product deep-link query parameter
// (?product=<id>) to a catalog product. ok is false when the parameter is
// absent or names an unknown product.
func (s *Service) ProductFromQuery(ctx context.Context, values url.Values) (*store.Product, bool) {
	id := values.Get(DeepLinkParam)
	if id == "" {
		return nil, false
	}
	p, err := s.docs.GetProduct(ctx, id)
	if err != nil {
		return nil, false
	}
	return p, true
}

func (s *Service) listAll(ctx context.Context) ([]store.Product, error) {
	if s.cache != nil {
		if products, ok := s.cache.Get(ctx); ok {
			return products, nil
		}
	}

	products, err := s.docs.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, products); err != nil {
			log.Warn().Err(err).Msg("failed to cache product list")
		}
	}
	return products, nil
}
