// Package reports serves read-only inventory and sales summaries.
package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockRow is a medicine at or below its reorder threshold.
type LowStockRow struct {
	MedicineID     int64  `json:"medicine_id"`
	Code           string `json:"code"`
	CommercialName string `json:"commercial_name"`
	Stock          int    `json:"stock"`
	MinStock       int    `json:"min_stock"`
}

// TopCustomerRow is a customer ranked by total units bought.
type TopCustomerRow struct {
	CustomerID int64  `json:"customer_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	TotalQty   int64  `json:"total_qty"`
	SaleCount  int64  `json:"sale_count"`
}

// StockRow is one line of the full stock listing.
type StockRow struct {
	MedicineID     int64  `json:"medicine_id"`
	Code           string `json:"code"`
	CommercialName string `json:"commercial_name"`
	GenericName    string `json:"generic_name"`
	Stock          int    `json:"stock"`
}

// Repository runs the report queries.
type Repository interface {
	LowStock(ctx context.Context) ([]LowStockRow, error)
	TopCustomers(ctx context.Context) ([]TopCustomerRow, error)
	Stock(ctx context.Context) ([]StockRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// LowStock lists medicines whose stock is at or below their min_stock
// threshold, falling back to the catalog default when no params row exists.
func (r *repository) LowStock(ctx context.Context) ([]LowStockRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.code, m.commercial_name, m.stock, COALESCE(p.min_stock, 10) AS min_stock
		 FROM medicines m
		 LEFT JOIN medicine_params p ON p.medicine_id = m.id
		 WHERE m.stock <= COALESCE(p.min_stock, 10)
		 ORDER BY m.stock ASC, m.commercial_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LowStockRow{}
	for rows.Next() {
		var row LowStockRow
		if err := rows.Scan(&row.MedicineID, &row.Code, &row.CommercialName, &row.Stock, &row.MinStock); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopCustomers ranks customers by total units bought across all sales.
func (r *repository) TopCustomers(ctx context.Context) ([]TopCustomerRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.code, c.name, COALESCE(SUM(i.qty), 0) AS total_qty, COUNT(DISTINCT s.id) AS sale_count
		 FROM customers c
		 JOIN sales s ON s.customer_id = c.id
		 JOIN sale_items i ON i.sale_id = s.id
		 GROUP BY c.id, c.code, c.name
		 ORDER BY total_qty DESC
		 LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopCustomerRow{}
	for rows.Next() {
		var row TopCustomerRow
		if err := rows.Scan(&row.CustomerID, &row.Code, &row.Name, &row.TotalQty, &row.SaleCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Stock returns the full catalog with current stock counts.
func (r *repository) Stock(ctx context.Context) ([]StockRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, commercial_name, generic_name, stock
		 FROM medicines
		 ORDER BY commercial_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StockRow{}
	for rows.Next() {
		var row StockRow
		if err := rows.Scan(&row.MedicineID, &row.Code, &row.CommercialName, &row.GenericName, &row.Stock); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
