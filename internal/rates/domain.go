// Package rates manages the exchange, shipping and utility rate tables.
// Each table keeps a full history; at most one row per key is active and
// serves as the current rate.
package rates

import (
	"errors"
	"time"
)

// ExchangeRate is one row of the currency-pair history.
type ExchangeRate struct {
	ID           int64     `json:"id"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         float64   `json:"rate"`
	BuyRate      *float64  `json:"buy_rate"`
	SellRate     *float64  `json:"sell_rate"`
	Source       string    `json:"source"`
	RateDate     time.Time `json:"rate_date"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ShippingRate is one row of the shipping tariff history.
type ShippingRate struct {
	ID                int64     `json:"id"`
	DomesticRate      float64   `json:"domestic_rate"`
	InternationalRate float64   `json:"international_rate"`
	BaseWeightKg      float64   `json:"base_weight_kg"`
	Description       string    `json:"description"`
	Source            string    `json:"source"`
	RateDate          time.Time `json:"rate_date"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// UtilityRate is one row of the utility-percentage history.
type UtilityRate struct {
	ID         int64     `json:"id"`
	UtilityPct float64   `json:"utility_pct"`
	Source     string    `json:"source"`
	RateDate   time.Time `json:"rate_date"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Shipping calculation types.
const (
	ShipDomestic      = "domestic"
	ShipInternational = "international"
)

// Rate sources.
const (
	SourceManual   = "manual"
	SourceExternal = "external"
)

var (
	ErrNoActiveRate  = errors.New("rates: no active rate")
	ErrInvalidRate   = errors.New("rates: rate must be greater than zero")
	ErrInvalidPair   = errors.New("rates: currency pair is required")
	ErrInvalidWeight = errors.New("rates: weight must be greater than zero")
	ErrInvalidType   = errors.New("rates: shipping type must be domestic or international")
	ErrDomesticAbove = errors.New("rates: international rate must exceed the domestic rate")
)
