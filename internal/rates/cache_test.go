package rates

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	miss, err := cache.GetExchange(ctx, "USD", "DOP")
	require.NoError(t, err)
	require.Nil(t, miss)

	stored := ExchangeRate{
		ID:           7,
		FromCurrency: "USD",
		ToCurrency:   "DOP",
		Rate:         59.42,
		Source:       SourceManual,
		RateDate:     time.Now().Truncate(time.Second),
		IsActive:     true,
	}
	require.NoError(t, cache.SetExchange(ctx, stored))

	hit, err := cache.GetExchange(ctx, "USD", "DOP")
	require.NoError(t, err)
	require.NotNil(t, hit)
	require.Equal(t, stored.ID, hit.ID)
	require.InDelta(t, stored.Rate, hit.Rate, 0.0001)

	require.NoError(t, cache.InvalidateExchange(ctx, "USD", "DOP"))

	miss, err = cache.GetExchange(ctx, "USD", "DOP")
	require.NoError(t, err)
	require.Nil(t, miss)
}
