package rates

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps the active exchange rate per pair in redis so the hot
// current-rate lookup skips postgres. Misses fall through silently.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs Cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func exchangeKey(from, to string) string {
	return "rates:fx:" + from + ":" + to
}

// GetExchange returns the cached rate for the pair, or nil on a miss.
func (c *Cache) GetExchange(ctx context.Context, from, to string) (*ExchangeRate, error) {
	payload, err := c.client.Get(ctx, exchangeKey(from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r ExchangeRate
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetExchange stores the rate under the pair key with the cache TTL.
func (c *Cache) SetExchange(ctx context.Context, r ExchangeRate) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, exchangeKey(r.FromCurrency, r.ToCurrency), payload, c.ttl).Err()
}

// InvalidateExchange drops the pair's cached rate.
func (c *Cache) InvalidateExchange(ctx context.Context, from, to string) error {
	return c.client.Del(ctx, exchangeKey(from, to)).Err()
}
