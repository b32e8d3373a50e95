package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable sales fact row. Ownership is UserID, which the
// row-level security policy keys on for the user tier.
type Sale struct {
	ID          int64           `db:"id" json:"id"`
	Date        time.Time       `db:"date" json:"date"`
	UserID      int64           `db:"user_id" json:"user_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Region      string          `db:"region" json:"region"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Validate enforces the insert-time invariants: strictly positive quantity,
// non-negative price, and total equal to quantity times unit price.
func (s Sale) Validate() error {
	if s.Quantity <= 0 {
		return errQuantity
	}
	if s.UnitPrice.IsNegative() {
		return errUnitPrice
	}
	expected := s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
	if !s.TotalAmount.Equal(expected) {
		return errTotalAmount
	}
	return nil
}

var (
	errQuantity    = saleInvariantError("quantity must be strictly positive")
	errUnitPrice   = saleInvariantError("unit_price must be non-negative")
	errTotalAmount = saleInvariantError("total_amount must equal quantity * unit_price")
)

type saleInvariantError string

func (e saleInvariantError) Error() string { return string(e) }

// SaleFilter narrows sales listings within the caller's visibility scope.
type SaleFilter struct {
	Region   string
	Page     int
	PageSize int
}

// RegionBreakdown aggregates sales per region.
type RegionBreakdown struct {
	Region      string          `db:"region" json:"region"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// ProductBreakdown aggregates units sold per product.
type ProductBreakdown struct {
	ProductName string `db:"product_name" json:"product_name"`
	Units       int64  `db:"units" json:"units"`
}

// DailyPoint is one day of the sales trend series.
type DailyPoint struct {
	Date        time.Time       `db:"date" json:"date"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// SalesSummary is the dashboard aggregate over the caller's visible rows.
type SalesSummary struct {
	TotalSales     decimal.Decimal    `json:"total_sales"`
	Transactions   int64              `json:"transactions"`
	AverageSale    decimal.Decimal    `json:"average_sale"`
	UnitsSold      int64              `json:"units_sold"`
	ByRegion       []RegionBreakdown  `json:"by_region"`
	TopProducts    []ProductBreakdown `json:"top_products"`
	DailyTrend     []DailyPoint       `json:"daily_trend"`
	GeneratedAtUTC time.Time          `json:"generated_at_utc"`
}
