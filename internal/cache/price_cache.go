package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verinum/verinum-api/internal/models"
)

// priceCacheTTL keeps best-price answers hot between refresh cycles
// without letting them outlive a full cycle.
const priceCacheTTL = 60 * time.Second

// PriceCache is a read-through cache for best-price lookups. A miss or a
// Redis error is never fatal: callers fall back to the database.
type PriceCache struct {
	redis *RedisClient
}

// NewPriceCache creates a new PriceCache.
func NewPriceCache(redis *RedisClient) *PriceCache {
	return &PriceCache{redis: redis}
}

// keyBest returns the Redis key for a best-price lookup. An empty country
// means "any country".
func (c *PriceCache) keyBest(service, country string) string {
	if country == "" {
		country = "any"
	}
	return fmt.Sprintf("price:best:%s:%s", service, country)
}

// SetBest caches the winning row for a (service, country) query.
func (c *PriceCache) SetBest(ctx context.Context, service, country string, row *models.ServiceCountryPrice) error {
	jsonData, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal price row: %w", err)
	}
	return c.redis.Set(ctx, c.keyBest(service, country), string(jsonData), priceCacheTTL)
}

// GetBest returns a cached best-price row, or an error on miss.
func (c *PriceCache) GetBest(ctx context.Context, service, country string) (*models.ServiceCountryPrice, error) {
	jsonData, err := c.redis.Get(ctx, c.keyBest(service, country))
	if err != nil {
		return nil, err
	}

	var row models.ServiceCountryPrice
	if err := json.Unmarshal([]byte(jsonData), &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price row: %w", err)
	}
	return &row, nil
}

// InvalidateBest drops the cached answer for a (service, country) query.
func (c *PriceCache) InvalidateBest(ctx context.Context, service, country string) error {
	return c.redis.Delete(ctx, c.keyBest(service, country))
}
