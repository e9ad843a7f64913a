// Package medicines implements the medicine catalog with price history and
// reorder parameters. The stock counter is read-only here; only ledger
// operations mutate it.
package medicines

import "time"

// Medicine is a catalog entry.
type Medicine struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	CommercialName string     `json:"commercial_name"`
	GenericName    string     `json:"generic_name"`
	DosageForm     string     `json:"dosage_form"`
	Concentration  string     `json:"concentration"`
	Packaging      string     `json:"packaging"`
	ExpiresAt      *time.Time `json:"expires_at"`
	UnitWeightKg   float64    `json:"unit_weight_kg"`
	Stock          int        `json:"stock"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Prices         []Price    `json:"prices"`
	Params         *Params    `json:"params,omitempty"`
}

// Price is one row of a medicine's price history. At most one row per
// medicine is active.
type Price struct {
	ID            int64     `json:"id"`
	MedicineID    int64     `json:"medicine_id"`
	PurchasePrice float64   `json:"purchase_price"`
	MarginPct     float64   `json:"margin_pct"`
	SalePrice     float64   `json:"sale_price"`
	DiscountFloor *float64  `json:"discount_floor"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Params holds per-medicine alert thresholds, upserted as a singleton.
type Params struct {
	MedicineID      int64 `json:"medicine_id"`
	MinStock        int   `json:"min_stock"`
	ExpiryAlertDays int   `json:"expiry_alert_days"`
	IdleAlertDays   int   `json:"idle_alert_days"`
}

// Default parameter values applied when the caller omits them.
const (
	DefaultMinStock        = 10
	DefaultExpiryAlertDays = 30
	DefaultIdleAlertDays   = 90
)
