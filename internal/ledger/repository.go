package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botica-erp/botica-erp/internal/shared"
)

// Repository persists ledger documents in PostgreSQL. Receipts and sales map
// to parallel table pairs; the queries differ only in table and party column
// names.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type tables struct {
	doc        string
	items      string
	itemFK     string
	party      string
	partyFK    string
	itemExtras bool
}

func tablesFor(kind DocKind) tables {
	if kind == KindSale {
		return tables{doc: "sales", items: "sale_items", itemFK: "sale_id", party: "customers", partyFK: "customer_id"}
	}
	return tables{doc: "receipts", items: "receipt_items", itemFK: "receipt_id", party: "suppliers", partyFK: "supplier_id", itemExtras: true}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a RepeatableRead transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (t *txRepo) DocumentExists(ctx context.Context, kind DocKind, id int64) (bool, error) {
	tb := tablesFor(kind)
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+tb.doc+` WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

// GetMedicineForUpdate locks the medicine row for the remainder of the
// transaction, serializing concurrent stock checks on the same medicine.
func (t *txRepo) GetMedicineForUpdate(ctx context.Context, id int64) (Medicine, error) {
	var m Medicine
	err := t.tx.QueryRow(ctx,
		`SELECT id, commercial_name, stock FROM medicines WHERE id=$1 FOR UPDATE`, id).
		Scan(&m.ID, &m.Name, &m.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Medicine{}, fmt.Errorf("%w: id %d", ErrMedicineNotFound, id)
		}
		return Medicine{}, err
	}
	return m, nil
}

func (t *txRepo) AdjustStock(ctx context.Context, medicineID int64, delta int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE medicines SET stock = stock + $1, updated_at = NOW() WHERE id = $2`, delta, medicineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrMedicineNotFound, medicineID)
	}
	return nil
}

func (t *txRepo) InsertDocument(ctx context.Context, kind DocKind, in CreateInput) (int64, error) {
	tb := tablesFor(kind)
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO `+tb.doc+` (`+tb.partyFK+`, doc_date, notes) VALUES ($1, $2, $3) RETURNING id`,
		in.PartyID, in.Date, in.Notes).Scan(&id)
	return id, err
}

func (t *txRepo) InsertItems(ctx context.Context, kind DocKind, docID int64, items []ItemInput) error {
	if len(items) == 0 {
		return nil
	}
	tb := tablesFor(kind)
	for _, it := range items {
		var err error
		if tb.itemExtras {
			_, err = t.tx.Exec(ctx,
				`INSERT INTO `+tb.items+` (`+tb.itemFK+`, medicine_id, qty, unit_cost, weight_kg) VALUES ($1, $2, $3, $4, $5)`,
				docID, it.MedicineID, it.Qty, it.UnitCost, it.WeightKg)
		} else {
			_, err = t.tx.Exec(ctx,
				`INSERT INTO `+tb.items+` (`+tb.itemFK+`, medicine_id, qty) VALUES ($1, $2, $3)`,
				docID, it.MedicineID, it.Qty)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) ItemQuantities(ctx context.Context, kind DocKind, docID int64) ([]ItemQty, error) {
	tb := tablesFor(kind)
	rows, err := t.tx.Query(ctx,
		`SELECT medicine_id, qty FROM `+tb.items+` WHERE `+tb.itemFK+`=$1`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ItemQty
	for rows.Next() {
		var it ItemQty
		if err := rows.Scan(&it.MedicineID, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *txRepo) UpdateHeader(ctx context.Context, kind DocKind, id int64, in UpdateInput) error {
	tb := tablesFor(kind)
	_, err := t.tx.Exec(ctx,
		`UPDATE `+tb.doc+` SET `+tb.partyFK+` = COALESCE($1, `+tb.partyFK+`), doc_date = COALESCE($2, doc_date), notes = $3 WHERE id = $4`,
		in.PartyID, in.Date, in.Notes, id)
	return err
}

func (t *txRepo) DeleteItems(ctx context.Context, kind DocKind, docID int64) error {
	tb := tablesFor(kind)
	_, err := t.tx.Exec(ctx, `DELETE FROM `+tb.items+` WHERE `+tb.itemFK+`=$1`, docID)
	return err
}

func (t *txRepo) DeleteDocument(ctx context.Context, kind DocKind, id int64) error {
	tb := tablesFor(kind)
	_, err := t.tx.Exec(ctx, `DELETE FROM `+tb.doc+` WHERE id=$1`, id)
	return err
}

// ListDocuments returns documents newest first with party and item medicine
// data attached.
func (r *Repository) ListDocuments(ctx context.Context, kind DocKind, filter ListFilter) ([]Document, error) {
	tb := tablesFor(kind)

	start, end, err := DateWindow(filter)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT d.id, d.` + tb.partyFK + `, d.doc_date, d.notes, d.created_at, p.code, p.name
		FROM ` + tb.doc + ` d JOIN ` + tb.party + ` p ON p.id = d.` + tb.partyFK + ` WHERE 1=1`)
	args := []interface{}{}
	argCount := 0

	if start != nil {
		argCount++
		sb.WriteString(` AND d.doc_date >= $` + strconv.Itoa(argCount))
		args = append(args, *start)
	}
	if end != nil {
		argCount++
		sb.WriteString(` AND d.doc_date <= $` + strconv.Itoa(argCount))
		args = append(args, *end)
	}
	if filter.PartyID > 0 {
		argCount++
		sb.WriteString(` AND d.` + tb.partyFK + ` = $` + strconv.Itoa(argCount))
		args = append(args, filter.PartyID)
	}
	if filter.Query != "" {
		argCount++
		sb.WriteString(` AND EXISTS (SELECT 1 FROM ` + tb.items + ` i JOIN medicines m ON m.id = i.medicine_id
			WHERE i.` + tb.itemFK + ` = d.id AND unaccent(m.commercial_name) ILIKE $` + strconv.Itoa(argCount) + `)`)
		args = append(args, "%"+shared.FoldSearchTerm(filter.Query)+"%")
	}
	sb.WriteString(` ORDER BY d.doc_date DESC, d.id DESC`)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	ids := []int64{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.PartyID, &d.Date, &d.Notes, &d.CreatedAt, &d.Party.Code, &d.Party.Name); err != nil {
			return nil, err
		}
		d.Party.ID = d.PartyID
		docs = append(docs, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return docs, nil
	}

	itemCols := `i.id, i.` + tb.itemFK + `, i.medicine_id, i.qty, `
	if tb.itemExtras {
		itemCols += `i.unit_cost, i.weight_kg, `
	} else {
		itemCols += `0::float8, 0::float8, `
	}
	itemRows, err := r.pool.Query(ctx,
		`SELECT `+itemCols+`m.id, m.code, m.commercial_name, m.stock
		 FROM `+tb.items+` i JOIN medicines m ON m.id = i.medicine_id
		 WHERE i.`+tb.itemFK+` = ANY($1) ORDER BY i.id`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	byDoc := make(map[int64][]Item, len(docs))
	for itemRows.Next() {
		var it Item
		var docID int64
		if err := itemRows.Scan(&it.ID, &docID, &it.MedicineID, &it.Qty, &it.UnitCost, &it.WeightKg,
			&it.Medicine.ID, &it.Medicine.Code, &it.Medicine.CommercialName, &it.Medicine.Stock); err != nil {
			return nil, err
		}
		byDoc[docID] = append(byDoc[docID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i].Items = byDoc[docs[i].ID]
	}
	return docs, nil
}
