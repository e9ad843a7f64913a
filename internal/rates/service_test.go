package rates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID   int64
	exchange []ExchangeRate
	shipping []ShippingRate
	utility  []UtilityRate
}

func (r *memoryRepo) CurrentExchange(_ context.Context, from, to string) (ExchangeRate, error) {
	for i := len(r.exchange) - 1; i >= 0; i-- {
		e := r.exchange[i]
		if e.IsActive && e.FromCurrency == from && e.ToCurrency == to {
			return e, nil
		}
	}
	return ExchangeRate{}, ErrNoActiveRate
}

func (r *memoryRepo) ExchangeHistory(_ context.Context, from, to string, days int) ([]ExchangeRate, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	out := []ExchangeRate{}
	for _, e := range r.exchange {
		if e.FromCurrency == from && e.ToCurrency == to && !e.RateDate.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) SetExchange(_ context.Context, in ExchangeRate) (ExchangeRate, error) {
	for i := range r.exchange {
		if r.exchange[i].FromCurrency == in.FromCurrency && r.exchange[i].ToCurrency == in.ToCurrency {
			r.exchange[i].IsActive = false
		}
	}
	r.nextID++
	in.ID = r.nextID
	in.IsActive = true
	r.exchange = append(r.exchange, in)
	return in, nil
}

func (r *memoryRepo) ClearExchange(_ context.Context, from, to string) error {
	cleared := false
	for i := range r.exchange {
		if r.exchange[i].IsActive && r.exchange[i].FromCurrency == from && r.exchange[i].ToCurrency == to {
			r.exchange[i].IsActive = false
			cleared = true
		}
	}
	if !cleared {
		return ErrNoActiveRate
	}
	return nil
}

func (r *memoryRepo) CurrentShipping(_ context.Context) (ShippingRate, error) {
	for i := len(r.shipping) - 1; i >= 0; i-- {
		if r.shipping[i].IsActive {
			return r.shipping[i], nil
		}
	}
	return ShippingRate{}, ErrNoActiveRate
}

func (r *memoryRepo) ShippingHistory(_ context.Context, days int) ([]ShippingRate, error) {
	return r.shipping, nil
}

func (r *memoryRepo) SetShipping(_ context.Context, in ShippingRate) (ShippingRate, error) {
	for i := range r.shipping {
		r.shipping[i].IsActive = false
	}
	r.nextID++
	in.ID = r.nextID
	in.IsActive = true
	r.shipping = append(r.shipping, in)
	return in, nil
}

func (r *memoryRepo) ClearShipping(_ context.Context) error {
	cleared := false
	for i := range r.shipping {
		if r.shipping[i].IsActive {
			r.shipping[i].IsActive = false
			cleared = true
		}
	}
	if !cleared {
		return ErrNoActiveRate
	}
	return nil
}

func (r *memoryRepo) CurrentUtility(_ context.Context) (UtilityRate, error) {
	for i := len(r.utility) - 1; i >= 0; i-- {
		if r.utility[i].IsActive {
			return r.utility[i], nil
		}
	}
	return UtilityRate{}, ErrNoActiveRate
}

func (r *memoryRepo) UtilityHistory(_ context.Context, days int) ([]UtilityRate, error) {
	return r.utility, nil
}

func (r *memoryRepo) SetUtility(_ context.Context, in UtilityRate) (UtilityRate, error) {
	for i := range r.utility {
		r.utility[i].IsActive = false
	}
	r.nextID++
	in.ID = r.nextID
	in.IsActive = true
	r.utility = append(r.utility, in)
	return in, nil
}

func (r *memoryRepo) ClearUtility(_ context.Context) error {
	cleared := false
	for i := range r.utility {
		if r.utility[i].IsActive {
			r.utility[i].IsActive = false
			cleared = true
		}
	}
	if !cleared {
		return ErrNoActiveRate
	}
	return nil
}

type staticFetcher struct {
	rate float64
	err  error
}

func (f staticFetcher) FetchRate(context.Context, string) (float64, error) {
	return f.rate, f.err
}

func newTestService(repo *memoryRepo, fetcher FetcherPort) *Service {
	return NewService(repo, nil, fetcher, "USD", "DOP")
}

func TestSetExchangeReplacesActive(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	first, err := svc.SetExchange(ctx, ExchangeInput{FromCurrency: "usd", ToCurrency: "dop", Rate: 58.5})
	require.NoError(t, err)
	require.Equal(t, "USD", first.FromCurrency)
	require.True(t, first.IsActive)

	second, err := svc.SetExchange(ctx, ExchangeInput{FromCurrency: "USD", ToCurrency: "DOP", Rate: 59.1})
	require.NoError(t, err)

	current, err := svc.CurrentExchange(ctx, "USD", "DOP")
	require.NoError(t, err)
	require.Equal(t, second.ID, current.ID)
	require.InDelta(t, 59.1, current.Rate, 0.0001)

	// Prior row stays in history, deactivated.
	require.Len(t, repo.exchange, 2)
	require.False(t, repo.exchange[0].IsActive)
}

func TestSetExchangeValidation(t *testing.T) {
	svc := newTestService(&memoryRepo{}, nil)
	ctx := context.Background()

	_, err := svc.SetExchange(ctx, ExchangeInput{FromCurrency: "USD", ToCurrency: "DOP", Rate: 0})
	require.ErrorIs(t, err, ErrInvalidRate)

	_, err = svc.SetExchange(ctx, ExchangeInput{FromCurrency: "USD", ToCurrency: "USD", Rate: 58})
	require.ErrorIs(t, err, ErrInvalidPair)
}

func TestCurrentExchangeDefaultsPair(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.SetExchange(ctx, ExchangeInput{Rate: 60.25})
	require.NoError(t, err)

	current, err := svc.CurrentExchange(ctx, "", "")
	require.NoError(t, err)
	require.Equal(t, "USD", current.FromCurrency)
	require.Equal(t, "DOP", current.ToCurrency)
}

func TestRefreshExchangeUsesFetcher(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(repo, staticFetcher{rate: 61.73})
	ctx := context.Background()

	r, err := svc.RefreshExchange(ctx)
	require.NoError(t, err)
	require.InDelta(t, 61.73, r.Rate, 0.0001)
	require.Equal(t, SourceExternal, r.Source)
}

func TestClearExchange(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.SetExchange(ctx, ExchangeInput{FromCurrency: "USD", ToCurrency: "MN", Rate: 24.2})
	require.NoError(t, err)

	require.NoError(t, svc.ClearExchange(ctx, "USD", "MN"))

	_, err = svc.CurrentExchange(ctx, "USD", "MN")
	require.ErrorIs(t, err, ErrNoActiveRate)

	require.ErrorIs(t, svc.ClearExchange(ctx, "USD", "MN"), ErrNoActiveRate)
}

func TestSetShippingValidation(t *testing.T) {
	svc := newTestService(&memoryRepo{}, nil)
	ctx := context.Background()

	_, err := svc.SetShipping(ctx, ShippingInput{DomesticRate: 0, InternationalRate: 10, BaseWeightKg: 1})
	require.ErrorIs(t, err, ErrInvalidRate)

	_, err = svc.SetShipping(ctx, ShippingInput{DomesticRate: 10, InternationalRate: 8, BaseWeightKg: 1})
	require.ErrorIs(t, err, ErrDomesticAbove)
}

func TestCalculateShipping(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.CalculateShipping(ctx, 2, ShipDomestic)
	require.ErrorIs(t, err, ErrNoActiveRate)

	_, err = svc.SetShipping(ctx, ShippingInput{DomesticRate: 150, InternationalRate: 425, BaseWeightKg: 0.5})
	require.NoError(t, err)

	quote, err := svc.CalculateShipping(ctx, 2, ShipDomestic)
	require.NoError(t, err)
	require.InDelta(t, 600.0, quote.Cost, 0.001)

	quote, err = svc.CalculateShipping(ctx, 0.75, ShipInternational)
	require.NoError(t, err)
	require.InDelta(t, 637.5, quote.Cost, 0.001)

	_, err = svc.CalculateShipping(ctx, -1, ShipDomestic)
	require.ErrorIs(t, err, ErrInvalidWeight)

	_, err = svc.CalculateShipping(ctx, 1, "overnight")
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestSetUtility(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.SetUtility(ctx, UtilityInput{UtilityPct: 0})
	require.ErrorIs(t, err, ErrInvalidRate)

	r, err := svc.SetUtility(ctx, UtilityInput{UtilityPct: 35})
	require.NoError(t, err)
	require.True(t, r.IsActive)

	current, err := svc.CurrentUtility(ctx)
	require.NoError(t, err)
	require.Equal(t, r.ID, current.ID)
}
