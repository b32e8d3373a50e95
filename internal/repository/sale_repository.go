package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/rls"
)

// SaleRepository is the only query path into the sales table. Every read
// takes an rls.Predicate; there is no unscoped accessor.
type SaleRepository struct {
	db *sqlx.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

const saleColumns = `id, date, user_id, product_name, quantity, unit_price, total_amount, region, created_at`

// scoped renders the predicate into a WHERE clause plus its args.
func scoped(pred rls.Predicate) (string, []interface{}) {
	if pred.Unrestricted() {
		return "", nil
	}
	return " WHERE " + pred.Where, pred.Args
}

// List returns visible sales newest-first with total count.
func (r *SaleRepository) List(ctx context.Context, pred rls.Predicate, filter models.SaleFilter) ([]models.Sale, int, error) {
	where, args := scoped(pred)

	if filter.Region != "" {
		if where == "" {
			where = " WHERE region = ?"
		} else {
			where += " AND region = ?"
		}
		args = append(args, filter.Region)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := r.db.Rebind(fmt.Sprintf("SELECT %s FROM sales%s ORDER BY date DESC, id DESC LIMIT %d OFFSET %d", saleColumns, where, pageSize, offset))

	var sales []models.Sale
	if err := r.db.SelectContext(ctx, &sales, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}

	countQuery := r.db.Rebind("SELECT COUNT(*) FROM sales" + where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	return sales, total, nil
}

// Totals returns the aggregate amount, transaction count and units sold for
// the visible rows.
func (r *SaleRepository) Totals(ctx context.Context, pred rls.Predicate) (total decimal.Decimal, transactions int64, units int64, err error) {
	where, args := scoped(pred)
	query := r.db.Rebind("SELECT COALESCE(SUM(total_amount), 0), COUNT(*), COALESCE(SUM(quantity), 0) FROM sales" + where)

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&total, &transactions, &units); err != nil {
		return decimal.Zero, 0, 0, fmt.Errorf("sales totals: %w", err)
	}
	return total, transactions, units, nil
}

// ByRegion aggregates visible sales per region, largest first.
func (r *SaleRepository) ByRegion(ctx context.Context, pred rls.Predicate) ([]models.RegionBreakdown, error) {
	where, args := scoped(pred)
	query := r.db.Rebind("SELECT region, SUM(total_amount) AS total_amount FROM sales" + where + " GROUP BY region ORDER BY total_amount DESC")

	var out []models.RegionBreakdown
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("sales by region: %w", err)
	}
	return out, nil
}

// TopProducts aggregates units sold per product over the visible rows.
func (r *SaleRepository) TopProducts(ctx context.Context, pred rls.Predicate, limit int) ([]models.ProductBreakdown, error) {
	if limit <= 0 {
		limit = 8
	}
	where, args := scoped(pred)
	query := r.db.Rebind(fmt.Sprintf("SELECT product_name, SUM(quantity) AS units FROM sales%s GROUP BY product_name ORDER BY units DESC LIMIT %d", where, limit))

	var out []models.ProductBreakdown
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return out, nil
}

// DailyTrend returns per-day totals for the visible rows, oldest first.
func (r *SaleRepository) DailyTrend(ctx context.Context, pred rls.Predicate) ([]models.DailyPoint, error) {
	where, args := scoped(pred)
	query := r.db.Rebind("SELECT date, SUM(total_amount) AS total_amount FROM sales" + where + " GROUP BY date ORDER BY date ASC")

	var out []models.DailyPoint
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	return out, nil
}

// Insert writes one sale as its own transaction. Bulk import calls this per
// row; a failure partway through a batch leaves prior rows committed.
func (r *SaleRepository) Insert(ctx context.Context, sale *models.Sale) error {
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sales (date, user_id, product_name, quantity, unit_price, total_amount, region, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.GetContext(ctx, &sale.ID, query, sale.Date, sale.UserID, sale.ProductName, sale.Quantity, sale.UnitPrice, sale.TotalAmount, sale.Region, sale.CreatedAt); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// Count returns the total number of sales rows regardless of scope. Used by
// health checks only, never exposed through a user-facing query.
func (r *SaleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sales`); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}

// LastSaleDate returns the most recent sale date, or zero time when the
// table is empty.
func (r *SaleRepository) LastSaleDate(ctx context.Context) (time.Time, error) {
	var last sql.NullTime
	if err := r.db.GetContext(ctx, &last, `SELECT MAX(date) FROM sales`); err != nil {
		return time.Time{}, fmt.Errorf("last sale date: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}
