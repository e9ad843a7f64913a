package rates

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachePort abstracts the current-rate cache.
type CachePort interface {
	GetExchange(ctx context.Context, from, to string) (*ExchangeRate, error)
	SetExchange(ctx context.Context, r ExchangeRate) error
	InvalidateExchange(ctx context.Context, from, to string) error
}

// FetcherPort abstracts the external rate provider.
type FetcherPort interface {
	FetchRate(ctx context.Context, currency string) (float64, error)
}

// Service coordinates rate reads, updates and the shipping calculator.
type Service struct {
	repo    Repository
	cache   CachePort
	fetcher FetcherPort

	baseCurrency  string
	localCurrency string

	// lookups collapses concurrent cache-miss reads for the same pair into
	// one repository query.
	lookups singleflight.Group
}

// NewService builds Service. Cache and fetcher are optional.
func NewService(repo Repository, cache CachePort, fetcher FetcherPort, baseCurrency, localCurrency string) *Service {
	return &Service{
		repo:          repo,
		cache:         cache,
		fetcher:       fetcher,
		baseCurrency:  strings.ToUpper(baseCurrency),
		localCurrency: strings.ToUpper(localCurrency),
	}
}

// DefaultPair returns the configured base and local currency codes, used
// when a request does not name a pair.
func (s *Service) DefaultPair() (string, string) {
	return s.baseCurrency, s.localCurrency
}

// ExchangeInput carries a manual exchange-rate update.
type ExchangeInput struct {
	FromCurrency string   `json:"from_currency"`
	ToCurrency   string   `json:"to_currency"`
	Rate         float64  `json:"rate"`
	BuyRate      *float64 `json:"buy_rate"`
	SellRate     *float64 `json:"sell_rate"`
}

// CurrentExchange returns the pair's active rate, consulting the cache
// first.
func (s *Service) CurrentExchange(ctx context.Context, from, to string) (ExchangeRate, error) {
	from, to, err := s.normalizePair(from, to)
	if err != nil {
		return ExchangeRate{}, err
	}
	if s.cache != nil {
		if cached, err := s.cache.GetExchange(ctx, from, to); err == nil && cached != nil {
			return *cached, nil
		}
	}
	v, err, _ := s.lookups.Do(from+"/"+to, func() (interface{}, error) {
		r, err := s.repo.CurrentExchange(ctx, from, to)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.SetExchange(ctx, r)
		}
		return r, nil
	})
	if err != nil {
		return ExchangeRate{}, err
	}
	return v.(ExchangeRate), nil
}

// ExchangeHistory returns the pair's rows from the last days days.
func (s *Service) ExchangeHistory(ctx context.Context, from, to string, days int) ([]ExchangeRate, error) {
	from, to, err := s.normalizePair(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.ExchangeHistory(ctx, from, to, clampDays(days))
}

// SetExchange records a manual rate for the pair and makes it the active
// one.
func (s *Service) SetExchange(ctx context.Context, in ExchangeInput) (ExchangeRate, error) {
	from, to, err := s.normalizePair(in.FromCurrency, in.ToCurrency)
	if err != nil {
		return ExchangeRate{}, err
	}
	if in.Rate <= 0 {
		return ExchangeRate{}, ErrInvalidRate
	}
	if in.BuyRate != nil && *in.BuyRate <= 0 {
		return ExchangeRate{}, ErrInvalidRate
	}
	if in.SellRate != nil && *in.SellRate <= 0 {
		return ExchangeRate{}, ErrInvalidRate
	}
	r, err := s.repo.SetExchange(ctx, ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         in.Rate,
		BuyRate:      in.BuyRate,
		SellRate:     in.SellRate,
		Source:       SourceManual,
		RateDate:     time.Now(),
	})
	if err != nil {
		return ExchangeRate{}, err
	}
	s.invalidate(ctx, from, to)
	return r, nil
}

// RefreshExchange pulls the base→local rate from the external provider and
// stores it as the active rate.
func (s *Service) RefreshExchange(ctx context.Context) (ExchangeRate, error) {
	if s.fetcher == nil {
		return ExchangeRate{}, ErrNoActiveRate
	}
	rate, err := s.fetcher.FetchRate(ctx, s.localCurrency)
	if err != nil {
		return ExchangeRate{}, err
	}
	r, err := s.repo.SetExchange(ctx, ExchangeRate{
		FromCurrency: s.baseCurrency,
		ToCurrency:   s.localCurrency,
		Rate:         rate,
		Source:       SourceExternal,
		RateDate:     time.Now(),
	})
	if err != nil {
		return ExchangeRate{}, err
	}
	s.invalidate(ctx, s.baseCurrency, s.localCurrency)
	return r, nil
}

// ClearExchange deactivates the pair's active rate.
func (s *Service) ClearExchange(ctx context.Context, from, to string) error {
	from, to, err := s.normalizePair(from, to)
	if err != nil {
		return err
	}
	if err := s.repo.ClearExchange(ctx, from, to); err != nil {
		return err
	}
	s.invalidate(ctx, from, to)
	return nil
}

// ShippingInput carries a shipping tariff update.
type ShippingInput struct {
	DomesticRate      float64 `json:"domestic_rate"`
	InternationalRate float64 `json:"international_rate"`
	BaseWeightKg      float64 `json:"base_weight_kg"`
	Description       string  `json:"description"`
}

func (s *Service) CurrentShipping(ctx context.Context) (ShippingRate, error) {
	return s.repo.CurrentShipping(ctx)
}

func (s *Service) ShippingHistory(ctx context.Context, days int) ([]ShippingRate, error) {
	return s.repo.ShippingHistory(ctx, clampDays(days))
}

// SetShipping validates and stores a new active shipping tariff. The
// international rate must exceed the domestic one.
func (s *Service) SetShipping(ctx context.Context, in ShippingInput) (ShippingRate, error) {
	if in.DomesticRate <= 0 || in.InternationalRate <= 0 || in.BaseWeightKg <= 0 {
		return ShippingRate{}, ErrInvalidRate
	}
	if in.InternationalRate <= in.DomesticRate {
		return ShippingRate{}, ErrDomesticAbove
	}
	return s.repo.SetShipping(ctx, ShippingRate{
		DomesticRate:      in.DomesticRate,
		InternationalRate: in.InternationalRate,
		BaseWeightKg:      in.BaseWeightKg,
		Description:       strings.TrimSpace(in.Description),
		Source:            SourceManual,
		RateDate:          time.Now(),
	})
}

func (s *Service) ClearShipping(ctx context.Context) error {
	return s.repo.ClearShipping(ctx)
}

// ShippingQuote is the result of a shipping cost calculation.
type ShippingQuote struct {
	WeightKg float64 `json:"weight_kg"`
	Type     string  `json:"type"`
	Rate     float64 `json:"rate"`
	Cost     float64 `json:"cost"`
}

// CalculateShipping prices a parcel against the active tariff. The cost
// scales linearly with weight over the tariff's base weight.
func (s *Service) CalculateShipping(ctx context.Context, weightKg float64, shipType string) (ShippingQuote, error) {
	if weightKg <= 0 {
		return ShippingQuote{}, ErrInvalidWeight
	}
	tariff, err := s.repo.CurrentShipping(ctx)
	if err != nil {
		return ShippingQuote{}, err
	}
	var rate float64
	switch shipType {
	case ShipDomestic:
		rate = tariff.DomesticRate
	case ShipInternational:
		rate = tariff.InternationalRate
	default:
		return ShippingQuote{}, ErrInvalidType
	}
	cost := weightKg / tariff.BaseWeightKg * rate
	return ShippingQuote{
		WeightKg: weightKg,
		Type:     shipType,
		Rate:     rate,
		Cost:     math.Round(cost*100) / 100,
	}, nil
}

// UtilityInput carries a utility percentage update.
type UtilityInput struct {
	UtilityPct float64 `json:"utility_pct"`
}

func (s *Service) CurrentUtility(ctx context.Context) (UtilityRate, error) {
	return s.repo.CurrentUtility(ctx)
}

func (s *Service) UtilityHistory(ctx context.Context, days int) ([]UtilityRate, error) {
	return s.repo.UtilityHistory(ctx, clampDays(days))
}

func (s *Service) SetUtility(ctx context.Context, in UtilityInput) (UtilityRate, error) {
	if in.UtilityPct <= 0 {
		return UtilityRate{}, ErrInvalidRate
	}
	return s.repo.SetUtility(ctx, UtilityRate{
		UtilityPct: in.UtilityPct,
		Source:     SourceManual,
		RateDate:   time.Now(),
	})
}

func (s *Service) ClearUtility(ctx context.Context) error {
	return s.repo.ClearUtility(ctx)
}

func (s *Service) normalizePair(from, to string) (string, string, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" {
		from = s.baseCurrency
	}
	if to == "" {
		to = s.localCurrency
	}
	if from == "" || to == "" || from == to {
		return "", "", ErrInvalidPair
	}
	return from, to, nil
}

func (s *Service) invalidate(ctx context.Context, from, to string) {
	if s.cache != nil {
		_ = s.cache.InvalidateExchange(ctx, from, to)
	}
}

func clampDays(days int) int {
	if days <= 0 || days > 365 {
		return 30
	}
	return days
}
