package medicines

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botica-erp/botica-erp/internal/shared"
)

// Repository persists the catalog.
type Repository interface {
	List(ctx context.Context, search string) ([]Medicine, error)
	Get(ctx context.Context, id int64) (Medicine, error)
	Create(ctx context.Context, m Medicine) (Medicine, error)
	Update(ctx context.Context, id int64, m Medicine) error
	Delete(ctx context.Context, id int64) error
	AddPrice(ctx context.Context, p Price) (Price, error)
	UpsertParams(ctx context.Context, p Params) (Params, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const medicineColumns = `id, code, commercial_name, generic_name, dosage_form, concentration, packaging, expires_at, unit_weight_kg, stock, created_at, updated_at`

func scanMedicine(row pgx.Row) (Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Code, &m.CommercialName, &m.GenericName, &m.DosageForm,
		&m.Concentration, &m.Packaging, &m.ExpiresAt, &m.UnitWeightKg, &m.Stock,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *repository) List(ctx context.Context, search string) ([]Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		query += ` AND (unaccent(commercial_name) ILIKE $` + n + ` OR unaccent(generic_name) ILIKE $` + n + ` OR code ILIKE $` + n + `)`
		args = append(args, "%"+shared.FoldSearchTerm(search)+"%")
	}
	query += ` ORDER BY commercial_name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []Medicine
	ids := []int64{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(meds) == 0 {
		return meds, nil
	}
	if err := r.attachRelations(ctx, meds, ids); err != nil {
		return nil, err
	}
	return meds, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Medicine, error) {
	m, err := scanMedicine(r.pool.QueryRow(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id=$1`, id))
	if err != nil {
		return Medicine{}, err
	}
	meds := []Medicine{m}
	if err := r.attachRelations(ctx, meds, []int64{id}); err != nil {
		return Medicine{}, err
	}
	return meds[0], nil
}

// attachRelations loads active prices and params for the given medicines.
func (r *repository) attachRelations(ctx context.Context, meds []Medicine, ids []int64) error {
	priceRows, err := r.pool.Query(ctx,
		`SELECT id, medicine_id, purchase_price, margin_pct, sale_price, discount_floor, is_active, created_at
		 FROM medicine_prices WHERE medicine_id = ANY($1) AND is_active ORDER BY created_at DESC`, ids)
	if err != nil {
		return err
	}
	defer priceRows.Close()

	pricesByMed := make(map[int64][]Price)
	for priceRows.Next() {
		var p Price
		if err := priceRows.Scan(&p.ID, &p.MedicineID, &p.PurchasePrice, &p.MarginPct, &p.SalePrice,
			&p.DiscountFloor, &p.IsActive, &p.CreatedAt); err != nil {
			return err
		}
		pricesByMed[p.MedicineID] = append(pricesByMed[p.MedicineID], p)
	}
	if err := priceRows.Err(); err != nil {
		return err
	}

	paramRows, err := r.pool.Query(ctx,
		`SELECT medicine_id, min_stock, expiry_alert_days, idle_alert_days
		 FROM medicine_params WHERE medicine_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer paramRows.Close()

	paramsByMed := make(map[int64]Params)
	for paramRows.Next() {
		var p Params
		if err := paramRows.Scan(&p.MedicineID, &p.MinStock, &p.ExpiryAlertDays, &p.IdleAlertDays); err != nil {
			return err
		}
		paramsByMed[p.MedicineID] = p
	}
	if err := paramRows.Err(); err != nil {
		return err
	}

	for i := range meds {
		meds[i].Prices = pricesByMed[meds[i].ID]
		if meds[i].Prices == nil {
			meds[i].Prices = []Price{}
		}
		if p, ok := paramsByMed[meds[i].ID]; ok {
			params := p
			meds[i].Params = &params
		}
	}
	return nil
}

func (r *repository) Create(ctx context.Context, m Medicine) (Medicine, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO medicines (code, commercial_name, generic_name, dosage_form, concentration, packaging, expires_at, unit_weight_kg, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`,
		m.Code, m.CommercialName, m.GenericName, m.DosageForm, m.Concentration, m.Packaging,
		m.ExpiresAt, m.UnitWeightKg, now).Scan(&m.ID)
	if err != nil {
		return Medicine{}, err
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Prices = []Price{}
	return m, nil
}

func (r *repository) Update(ctx context.Context, id int64, m Medicine) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE medicines SET code=$1, commercial_name=$2, generic_name=$3, dosage_form=$4,
		 concentration=$5, packaging=$6, expires_at=$7, unit_weight_kg=$8, updated_at=NOW()
		 WHERE id=$9`,
		m.Code, m.CommercialName, m.GenericName, m.DosageForm, m.Concentration, m.Packaging,
		m.ExpiresAt, m.UnitWeightKg, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medicines WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddPrice deactivates the medicine's prior active prices and inserts the new
// row as the active one, in a single transaction.
func (r *repository) AddPrice(ctx context.Context, p Price) (Price, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Price{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE medicine_prices SET is_active = FALSE WHERE medicine_id = $1 AND is_active`, p.MedicineID); err != nil {
		return Price{}, err
	}
	now := time.Now()
	err = tx.QueryRow(ctx,
		`INSERT INTO medicine_prices (medicine_id, purchase_price, margin_pct, sale_price, discount_floor, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6) RETURNING id`,
		p.MedicineID, p.PurchasePrice, p.MarginPct, p.SalePrice, p.DiscountFloor, now).Scan(&p.ID)
	if err != nil {
		return Price{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Price{}, err
	}
	p.IsActive = true
	p.CreatedAt = now
	return p, nil
}

func (r *repository) UpsertParams(ctx context.Context, p Params) (Params, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO medicine_params (medicine_id, min_stock, expiry_alert_days, idle_alert_days)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (medicine_id) DO UPDATE SET min_stock=$2, expiry_alert_days=$3, idle_alert_days=$4`,
		p.MedicineID, p.MinStock, p.ExpiryAlertDays, p.IdleAlertDays)
	return p, err
}
