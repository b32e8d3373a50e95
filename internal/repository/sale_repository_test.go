package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/rls"
)

func saleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "date", "user_id", "product_name", "quantity", "unit_price", "total_amount", "region", "created_at"}).
		AddRow(1, time.Now(), 42, "Desk Lamp", 2, "39.95", "79.90", "North", time.Now())
}

func TestSaleRepositoryListAppliesUserPredicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSaleRepository(db)
	pred := rls.Scope(models.RoleUser, 42, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, user_id, product_name, quantity, unit_price, total_amount, region, created_at FROM sales WHERE user_id = ? ORDER BY date DESC, id DESC")).
		WithArgs(int64(42)).
		WillReturnRows(saleRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sales WHERE user_id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sales, total, err := repo.List(context.Background(), pred, models.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepositoryListAdminIsUnrestricted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSaleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sales ORDER BY date DESC, id DESC")).
		WillReturnRows(saleRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sales")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), rls.Scope(models.RoleAdmin, 1, time.Now()), models.SaleFilter{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepositoryListRegionFilterComposesWithPredicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSaleRepository(db)
	now := time.Now()
	pred := rls.Scope(models.RoleManager, 1, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sales WHERE date >= ? AND region = ? ORDER BY date DESC, id DESC")).
		WithArgs(pred.Args[0], "North").
		WillReturnRows(saleRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sales WHERE date >= ? AND region = ?")).
		WithArgs(pred.Args[0], "North").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), pred, models.SaleFilter{Region: "North"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepositoryTotals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSaleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total_amount), 0), COUNT(*), COALESCE(SUM(quantity), 0) FROM sales WHERE user_id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "transactions", "units"}).AddRow("159.80", 2, 4))

	total, transactions, units, err := repo.Totals(context.Background(), rls.Scope(models.RoleUser, 42, time.Now()))
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.RequireFromString("159.80")))
	require.Equal(t, int64(2), transactions)
	require.Equal(t, int64(4), units)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepositoryInsertReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSaleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sales (date, user_id, product_name, quantity, unit_price, total_amount, region, created_at)")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(33))

	sale := &models.Sale{
		Date:        time.Now(),
		UserID:      42,
		ProductName: "Desk Lamp",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("39.95"),
		TotalAmount: decimal.RequireFromString("79.90"),
		Region:      "North",
	}
	require.NoError(t, repo.Insert(context.Background(), sale))
	require.Equal(t, int64(33), sale.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepositoryLastSaleDateEmptyTable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSaleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(date) FROM sales")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	last, err := repo.LastSaleDate(context.Background())
	require.NoError(t, err)
	require.True(t, last.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
