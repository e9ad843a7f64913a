package rates

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botica-erp/botica-erp/internal/platform/db"
)

// Repository persists the three rate histories.
type Repository interface {
	CurrentExchange(ctx context.Context, from, to string) (ExchangeRate, error)
	ExchangeHistory(ctx context.Context, from, to string, days int) ([]ExchangeRate, error)
	SetExchange(ctx context.Context, r ExchangeRate) (ExchangeRate, error)
	ClearExchange(ctx context.Context, from, to string) error

	CurrentShipping(ctx context.Context) (ShippingRate, error)
	ShippingHistory(ctx context.Context, days int) ([]ShippingRate, error)
	SetShipping(ctx context.Context, r ShippingRate) (ShippingRate, error)
	ClearShipping(ctx context.Context) error

	CurrentUtility(ctx context.Context) (UtilityRate, error)
	UtilityHistory(ctx context.Context, days int) ([]UtilityRate, error)
	SetUtility(ctx context.Context, r UtilityRate) (UtilityRate, error)
	ClearUtility(ctx context.Context) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const exchangeColumns = `id, from_currency, to_currency, rate, buy_rate, sell_rate, source, rate_date, is_active, created_at`

func scanExchange(row pgx.Row) (ExchangeRate, error) {
	var r ExchangeRate
	err := row.Scan(&r.ID, &r.FromCurrency, &r.ToCurrency, &r.Rate, &r.BuyRate, &r.SellRate,
		&r.Source, &r.RateDate, &r.IsActive, &r.CreatedAt)
	return r, err
}

func (repo *repository) CurrentExchange(ctx context.Context, from, to string) (ExchangeRate, error) {
	r, err := scanExchange(repo.pool.QueryRow(ctx,
		`SELECT `+exchangeColumns+` FROM exchange_rates WHERE from_currency=$1 AND to_currency=$2 AND is_active`,
		from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		return ExchangeRate{}, ErrNoActiveRate
	}
	return r, err
}

func (repo *repository) ExchangeHistory(ctx context.Context, from, to string, days int) ([]ExchangeRate, error) {
	rows, err := repo.pool.Query(ctx,
		`SELECT `+exchangeColumns+` FROM exchange_rates
		 WHERE from_currency=$1 AND to_currency=$2 AND rate_date >= $3
		 ORDER BY rate_date DESC, id DESC`,
		from, to, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []ExchangeRate{}
	for rows.Next() {
		r, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

// SetExchange deactivates the pair's active row and inserts the new one as
// active, in a single transaction.
func (repo *repository) SetExchange(ctx context.Context, r ExchangeRate) (ExchangeRate, error) {
	err := db.WithTx(ctx, repo.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE exchange_rates SET is_active = FALSE WHERE from_currency=$1 AND to_currency=$2 AND is_active`,
			r.FromCurrency, r.ToCurrency); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO exchange_rates (from_currency, to_currency, rate, buy_rate, sell_rate, source, rate_date, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE) RETURNING id, created_at`,
			r.FromCurrency, r.ToCurrency, r.Rate, r.BuyRate, r.SellRate, r.Source, r.RateDate).
			Scan(&r.ID, &r.CreatedAt)
	})
	if err != nil {
		return ExchangeRate{}, err
	}
	r.IsActive = true
	return r, nil
}

func (repo *repository) ClearExchange(ctx context.Context, from, to string) error {
	tag, err := repo.pool.Exec(ctx,
		`UPDATE exchange_rates SET is_active = FALSE WHERE from_currency=$1 AND to_currency=$2 AND is_active`,
		from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveRate
	}
	return nil
}

const shippingColumns = `id, domestic_rate, international_rate, base_weight_kg, description, source, rate_date, is_active, created_at`

func scanShipping(row pgx.Row) (ShippingRate, error) {
	var r ShippingRate
	err := row.Scan(&r.ID, &r.DomesticRate, &r.InternationalRate, &r.BaseWeightKg, &r.Description,
		&r.Source, &r.RateDate, &r.IsActive, &r.CreatedAt)
	return r, err
}

func (repo *repository) CurrentShipping(ctx context.Context) (ShippingRate, error) {
	r, err := scanShipping(repo.pool.QueryRow(ctx,
		`SELECT `+shippingColumns+` FROM shipping_rates WHERE is_active`))
	if errors.Is(err, pgx.ErrNoRows) {
		return ShippingRate{}, ErrNoActiveRate
	}
	return r, err
}

func (repo *repository) ShippingHistory(ctx context.Context, days int) ([]ShippingRate, error) {
	rows, err := repo.pool.Query(ctx,
		`SELECT `+shippingColumns+` FROM shipping_rates WHERE rate_date >= $1 ORDER BY rate_date DESC, id DESC`,
		time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []ShippingRate{}
	for rows.Next() {
		r, err := scanShipping(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

func (repo *repository) SetShipping(ctx context.Context, r ShippingRate) (ShippingRate, error) {
	err := db.WithTx(ctx, repo.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE shipping_rates SET is_active = FALSE WHERE is_active`); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO shipping_rates (domestic_rate, international_rate, base_weight_kg, description, source, rate_date, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE) RETURNING id, created_at`,
			r.DomesticRate, r.InternationalRate, r.BaseWeightKg, r.Description, r.Source, r.RateDate).
			Scan(&r.ID, &r.CreatedAt)
	})
	if err != nil {
		return ShippingRate{}, err
	}
	r.IsActive = true
	return r, nil
}

func (repo *repository) ClearShipping(ctx context.Context) error {
	tag, err := repo.pool.Exec(ctx, `UPDATE shipping_rates SET is_active = FALSE WHERE is_active`)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveRate
	}
	return nil
}

const utilityColumns = `id, utility_pct, source, rate_date, is_active, created_at`

func scanUtility(row pgx.Row) (UtilityRate, error) {
	var r UtilityRate
	err := row.Scan(&r.ID, &r.UtilityPct, &r.Source, &r.RateDate, &r.IsActive, &r.CreatedAt)
	return r, err
}

func (repo *repository) CurrentUtility(ctx context.Context) (UtilityRate, error) {
	r, err := scanUtility(repo.pool.QueryRow(ctx,
		`SELECT `+utilityColumns+` FROM utility_rates WHERE is_active`))
	if errors.Is(err, pgx.ErrNoRows) {
		return UtilityRate{}, ErrNoActiveRate
	}
	return r, err
}

func (repo *repository) UtilityHistory(ctx context.Context, days int) ([]UtilityRate, error) {
	rows, err := repo.pool.Query(ctx,
		`SELECT `+utilityColumns+` FROM utility_rates WHERE rate_date >= $1 ORDER BY rate_date DESC, id DESC`,
		time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []UtilityRate{}
	for rows.Next() {
		r, err := scanUtility(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

func (repo *repository) SetUtility(ctx context.Context, r UtilityRate) (UtilityRate, error) {
	err := db.WithTx(ctx, repo.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE utility_rates SET is_active = FALSE WHERE is_active`); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO utility_rates (utility_pct, source, rate_date, is_active)
			 VALUES ($1, $2, $3, TRUE) RETURNING id, created_at`,
			r.UtilityPct, r.Source, r.RateDate).
			Scan(&r.ID, &r.CreatedAt)
	})
	if err != nil {
		return UtilityRate{}, err
	}
	r.IsActive = true
	return r, nil
}

func (repo *repository) ClearUtility(ctx context.Context) error {
	tag, err := repo.pool.Exec(ctx, `UPDATE utility_rates SET is_active = FALSE WHERE is_active`)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveRate
	}
	return nil
}
