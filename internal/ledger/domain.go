// Package ledger implements stock-in (receipts) and stock-out (sales)
// documents with transactional stock reconciliation on the medicine counter.
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// DocKind discriminates the two document types the ledger manages.
type DocKind string

const (
	// KindReceipt is a stock-in document referencing a supplier.
	KindReceipt DocKind = "receipt"
	// KindSale is a stock-out document referencing a customer.
	KindSale DocKind = "sale"
)

// StockSign returns the direction a document's quantities move stock in.
func (k DocKind) StockSign() int {
	if k == KindSale {
		return -1
	}
	return 1
}

// PartyRef is the supplier or customer attached to a listed document.
type PartyRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// MedicineRef is the medicine summary embedded in listed items.
type MedicineRef struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	CommercialName string `json:"commercial_name"`
	Stock          int    `json:"stock"`
}

// Item is one line of a receipt or sale. UnitCost and WeightKg are only
// populated for receipts.
type Item struct {
	ID         int64       `json:"id"`
	MedicineID int64       `json:"medicine_id"`
	Qty        int         `json:"qty"`
	UnitCost   float64     `json:"unit_cost,omitempty"`
	WeightKg   float64     `json:"weight_kg,omitempty"`
	Medicine   MedicineRef `json:"medicine"`
}

// Document is a receipt or sale with its party and items attached.
type Document struct {
	ID        int64     `json:"id"`
	PartyID   int64     `json:"-"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	Party     PartyRef  `json:"-"`
	Items     []Item    `json:"items"`
}

// ItemInput is one incoming document line. For sales only MedicineID and Qty
// are meaningful; cost and weight are stored verbatim for receipts.
type ItemInput struct {
	MedicineID int64   `json:"medicineId" validate:"required,gt=0"`
	Qty        int     `json:"qty" validate:"required,gt=0"`
	UnitCost   float64 `json:"unit_cost" validate:"gte=0"`
	WeightKg   float64 `json:"weight_kg" validate:"gte=0"`
}

// CreateInput creates a document with its items in one transaction.
type CreateInput struct {
	PartyID int64
	Date    time.Time
	Notes   *string
	Items   []ItemInput

	ActorID        int64
	IdempotencyKey string
}

// UpdateInput replaces a document's item set and updates header fields.
// PartyID and Date are applied only when non-nil; Notes always replaces the
// stored value, matching full-document form submission.
type UpdateInput struct {
	PartyID *int64
	Date    *time.Time
	Notes   *string
	Items   []ItemInput

	ActorID int64
}

// ListFilter narrows document listings. Exactly one of Day, Week, Month or
// From/To is honored, in that precedence order.
type ListFilter struct {
	Day     string
	Week    string
	Month   string
	From    string
	To      string
	PartyID int64
	Query   string
}

// ItemQty is a document line reduced to its stock effect.
type ItemQty struct {
	MedicineID int64
	Qty        int
}

// Medicine is the locked stock row the ledger validates against.
type Medicine struct {
	ID    int64
	Name  string
	Stock int
}

// Sentinel errors for ledger business-rule violations.
var (
	ErrInsufficientStock    = errors.New("ledger: insufficient stock")
	ErrStockWouldGoNegative = errors.New("ledger: stock would go negative")
	ErrNoItems              = errors.New("ledger: document requires at least one item")
	ErrInvalidQuantity      = errors.New("ledger: item quantity must be positive")
	ErrNotFound             = errors.New("ledger: document not found")
	ErrMedicineNotFound     = errors.New("ledger: medicine not found")
	ErrValidationFailed     = errors.New("ledger: validation failed")
)

// StockError carries the offending medicine's identity alongside the
// violated rule, so handlers can surface it in the 409 response.
type StockError struct {
	MedicineID int64
	Medicine   string
	rule       error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%v for %q", e.rule, e.Medicine)
}

func (e *StockError) Unwrap() error { return e.rule }

func insufficientStock(m Medicine) error {
	return &StockError{MedicineID: m.ID, Medicine: m.Name, rule: ErrInsufficientStock}
}

func stockWouldGoNegative(m Medicine) error {
	return &StockError{MedicineID: m.ID, Medicine: m.Name, rule: ErrStockWouldGoNegative}
}
