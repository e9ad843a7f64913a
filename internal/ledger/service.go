package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/botica-erp/botica-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListDocuments(ctx context.Context, kind DocKind, filter ListFilter) ([]Document, error)
}

// TxRepository exposes the transactional operations the service needs. All
// methods run on the same database transaction.
type TxRepository interface {
	DocumentExists(ctx context.Context, kind DocKind, id int64) (bool, error)
	GetMedicineForUpdate(ctx context.Context, id int64) (Medicine, error)
	AdjustStock(ctx context.Context, medicineID int64, delta int) error
	InsertDocument(ctx context.Context, kind DocKind, in CreateInput) (int64, error)
	InsertItems(ctx context.Context, kind DocKind, docID int64, items []ItemInput) error
	ItemQuantities(ctx context.Context, kind DocKind, docID int64) ([]ItemQty, error)
	UpdateHeader(ctx context.Context, kind DocKind, id int64, in UpdateInput) error
	DeleteItems(ctx context.Context, kind DocKind, docID int64) error
	DeleteDocument(ctx context.Context, kind DocKind, id int64) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts rejected ledger operations.
type MetricsPort interface {
	RecordStockRejection(kind string)
}

// Service coordinates receipt and sale lifecycles.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	metrics     MetricsPort
}

// NewService builds Service. Audit, idempotency and metrics are optional.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, metrics MetricsPort) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, metrics: metrics}
}

// Create inserts a document with its items and adjusts stock, all inside one
// transaction. Every referenced medicine is locked up front; sales also
// validate available stock per medicine before any write.
func (s *Service) Create(ctx context.Context, kind DocKind, in CreateInput) (int64, error) {
	if in.PartyID <= 0 {
		return 0, fmt.Errorf("%w: party id required", ErrValidationFailed)
	}
	if err := validateItems(in.Items); err != nil {
		return 0, err
	}

	insertedKey := false
	if s.idempotency != nil && in.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, in.IdempotencyKey, string(kind)); err != nil {
			return 0, err
		}
		insertedKey = true
	}

	totals := aggregateQuantities(in.Items)
	medIDs := sortedMedicineIDs(totals)

	var docID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// Lock every referenced medicine in id order. The lock both pins the
		// stock value for sale validation and surfaces a missing medicine as
		// ErrMedicineNotFound before any insert runs.
		for _, medID := range medIDs {
			med, err := tx.GetMedicineForUpdate(ctx, medID)
			if err != nil {
				return err
			}
			if kind == KindSale && med.Stock < totals[medID] {
				return insufficientStock(med)
			}
		}

		id, err := tx.InsertDocument(ctx, kind, in)
		if err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, kind, id, in.Items); err != nil {
			return err
		}
		for _, medID := range medIDs {
			if err := tx.AdjustStock(ctx, medID, kind.StockSign()*totals[medID]); err != nil {
				return err
			}
		}
		docID = id
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, in.IdempotencyKey)
		}
		s.countRejection(kind, err)
		return 0, err
	}

	s.recordAudit(ctx, kind, "create", docID, in.ActorID, map[string]any{
		"party_id": in.PartyID,
		"items":    len(in.Items),
	})
	return docID, nil
}

// Update replaces the document's item set and reconciles stock by the
// per-medicine quantity delta. Validation runs for every affected medicine
// before any stock write, so a failure leaves the database untouched.
func (s *Service) Update(ctx context.Context, kind DocKind, id int64, in UpdateInput) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid document id", ErrValidationFailed)
	}
	if err := validateItems(in.Items); err != nil {
		return err
	}

	next := aggregateQuantities(in.Items)

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.DocumentExists(ctx, kind, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		prevItems, err := tx.ItemQuantities(ctx, kind, id)
		if err != nil {
			return err
		}
		prev := make(map[int64]int, len(prevItems))
		for _, it := range prevItems {
			prev[it.MedicineID] += it.Qty
		}

		medIDs := unionMedicineIDs(prev, next)

		// Validation pass, before any stock write. Every affected medicine is
		// locked in id order; only unfavorable deltas can violate the floor,
		// favorable or zero deltas just need the row to exist.
		for _, medID := range medIDs {
			med, err := tx.GetMedicineForUpdate(ctx, medID)
			if err != nil {
				return err
			}
			delta := next[medID] - prev[medID]
			switch {
			case kind == KindReceipt && delta < 0:
				if med.Stock+delta < 0 {
					return stockWouldGoNegative(med)
				}
			case kind == KindSale && delta > 0:
				if med.Stock < delta {
					return insufficientStock(med)
				}
			}
		}

		// Apply pass.
		for _, medID := range medIDs {
			delta := next[medID] - prev[medID]
			if delta == 0 {
				continue
			}
			if err := tx.AdjustStock(ctx, medID, kind.StockSign()*delta); err != nil {
				return err
			}
		}

		if err := tx.DeleteItems(ctx, kind, id); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, kind, id, in.Items); err != nil {
			return err
		}
		return tx.UpdateHeader(ctx, kind, id, in)
	})
	if err != nil {
		s.countRejection(kind, err)
		return err
	}

	s.recordAudit(ctx, kind, "update", id, in.ActorID, map[string]any{"items": len(in.Items)})
	return nil
}

// Delete reverses every item quantity against stock, then removes items and
// the document. A receipt reversal that would push stock below zero rejects
// the whole operation before any write.
func (s *Service) Delete(ctx context.Context, kind DocKind, id int64, actorID int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid document id", ErrValidationFailed)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.DocumentExists(ctx, kind, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		items, err := tx.ItemQuantities(ctx, kind, id)
		if err != nil {
			return err
		}
		totals := make(map[int64]int, len(items))
		for _, it := range items {
			totals[it.MedicineID] += it.Qty
		}
		medIDs := sortedMedicineIDs(totals)

		if kind == KindReceipt {
			for _, medID := range medIDs {
				med, err := tx.GetMedicineForUpdate(ctx, medID)
				if err != nil {
					return err
				}
				if med.Stock-totals[medID] < 0 {
					return stockWouldGoNegative(med)
				}
			}
		}

		for _, medID := range medIDs {
			if err := tx.AdjustStock(ctx, medID, -kind.StockSign()*totals[medID]); err != nil {
				return err
			}
		}
		if err := tx.DeleteItems(ctx, kind, id); err != nil {
			return err
		}
		return tx.DeleteDocument(ctx, kind, id)
	})
	if err != nil {
		s.countRejection(kind, err)
		return err
	}

	s.recordAudit(ctx, kind, "delete", id, actorID, nil)
	return nil
}

// List returns documents matching the filter, newest first, with party and
// item medicine data attached.
func (s *Service) List(ctx context.Context, kind DocKind, filter ListFilter) ([]Document, error) {
	return s.repo.ListDocuments(ctx, kind, filter)
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, it := range items {
		if it.MedicineID <= 0 {
			return fmt.Errorf("%w: medicine id required", ErrValidationFailed)
		}
		if it.Qty <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// aggregateQuantities sums quantities per medicine; duplicate lines for the
// same medicine collapse into one total before any delta computation.
func aggregateQuantities(items []ItemInput) map[int64]int {
	totals := make(map[int64]int, len(items))
	for _, it := range items {
		totals[it.MedicineID] += it.Qty
	}
	return totals
}

// sortedMedicineIDs fixes the medicine lock order so concurrent ledger
// operations touching the same rows cannot deadlock.
func sortedMedicineIDs(totals map[int64]int) []int64 {
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func unionMedicineIDs(prev, next map[int64]int) []int64 {
	seen := make(map[int64]struct{}, len(prev)+len(next))
	for id := range prev {
		seen[id] = struct{}{}
	}
	for id := range next {
		seen[id] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Service) recordAudit(ctx context.Context, kind DocKind, action string, id int64, actorID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   fmt.Sprintf("ledger:%s:%s", kind, action),
		Entity:   string(kind),
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}

func (s *Service) countRejection(kind DocKind, err error) {
	if s.metrics == nil {
		return
	}
	if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrStockWouldGoNegative) {
		s.metrics.RecordStockRejection(string(kind))
	}
}
