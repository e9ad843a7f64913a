package medicines

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors caught before touching the store.
var (
	ErrCodeRequired = errors.New("medicines: code is required")
	ErrNameRequired = errors.New("medicines: commercial name is required")
	ErrInvalidPrice = errors.New("medicines: purchase price must be >= 0")
	ErrInvalidID    = errors.New("medicines: invalid medicine id")
)

// Service coordinates catalog operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns medicines matching the optional search term, with active
// prices and params attached, ordered by commercial name.
func (s *Service) List(ctx context.Context, search string) ([]Medicine, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

// Get returns one medicine with active prices and params.
func (s *Service) Get(ctx context.Context, id int64) (Medicine, error) {
	if id <= 0 {
		return Medicine{}, ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a catalog entry. Blank dosage form, concentration and
// packaging fall back to the catalog defaults.
func (s *Service) Create(ctx context.Context, m Medicine) (Medicine, error) {
	if err := normalize(&m); err != nil {
		return Medicine{}, err
	}
	return s.repo.Create(ctx, m)
}

// Update replaces the medicine's descriptive fields. Stock is not touched.
func (s *Service) Update(ctx context.Context, id int64, m Medicine) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if err := normalize(&m); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, m)
}

// Delete removes a medicine; the database rejects it with an FK violation
// when ledger movements reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// AddPrice appends a price-history row, computing the sale price from the
// margin and deactivating the prior active price.
func (s *Service) AddPrice(ctx context.Context, medicineID int64, purchasePrice, marginPct float64, discountFloor *float64) (Price, error) {
	if medicineID <= 0 {
		return Price{}, ErrInvalidID
	}
	if purchasePrice < 0 {
		return Price{}, ErrInvalidPrice
	}
	p := Price{
		MedicineID:    medicineID,
		PurchasePrice: RoundMoney(purchasePrice),
		MarginPct:     RoundMoney(marginPct),
		SalePrice:     SalePriceFromMargin(purchasePrice, marginPct),
	}
	if discountFloor != nil {
		floor := RoundMoney(*discountFloor)
		p.DiscountFloor = &floor
	}
	return s.repo.AddPrice(ctx, p)
}

// SetParams upserts the medicine's alert thresholds, applying defaults for
// non-positive values.
func (s *Service) SetParams(ctx context.Context, medicineID int64, minStock, expiryAlertDays, idleAlertDays int) (Params, error) {
	if medicineID <= 0 {
		return Params{}, ErrInvalidID
	}
	p := Params{
		MedicineID:      medicineID,
		MinStock:        minStock,
		ExpiryAlertDays: expiryAlertDays,
		IdleAlertDays:   idleAlertDays,
	}
	if p.MinStock <= 0 {
		p.MinStock = DefaultMinStock
	}
	if p.ExpiryAlertDays <= 0 {
		p.ExpiryAlertDays = DefaultExpiryAlertDays
	}
	if p.IdleAlertDays <= 0 {
		p.IdleAlertDays = DefaultIdleAlertDays
	}
	return s.repo.UpsertParams(ctx, p)
}

func normalize(m *Medicine) error {
	m.Code = strings.TrimSpace(m.Code)
	m.CommercialName = strings.TrimSpace(m.CommercialName)
	m.GenericName = strings.TrimSpace(m.GenericName)
	if m.Code == "" {
		return ErrCodeRequired
	}
	if m.CommercialName == "" {
		return ErrNameRequired
	}
	if m.DosageForm == "" {
		m.DosageForm = "comprimidos"
	}
	if m.Concentration == "" {
		m.Concentration = "mg"
	}
	if m.Packaging == "" {
		m.Packaging = "blister"
	}
	if m.UnitWeightKg < 0 {
		return fmt.Errorf("medicines: unit weight must be >= 0")
	}
	m.UnitWeightKg = RoundMoney(m.UnitWeightKg)
	return nil
}
