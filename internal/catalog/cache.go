package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

const cacheKey = "catalog:products"

// Cache is a Redis-backed cache for the product list. Misses and Redis
// errors both fall through to the document store.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context) ([]store.Product, bool) {
	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("catalog cache read failed")
		}
		return nil, false
	}

	var products []store.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *Cache) Set(ctx context.Context, products []store.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached product list. Called after catalog mutations.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKey).Err()
}
