package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/rls"
)

// pagingSaleRepo serves a fixed corpus one page at a time, the way the real
// repository does.
type pagingSaleRepo struct {
	mockSaleRepo
	corpus []models.Sale
}

func (p *pagingSaleRepo) List(ctx context.Context, pred rls.Predicate, filter models.SaleFilter) ([]models.Sale, int, error) {
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(p.corpus) {
		return nil, len(p.corpus), nil
	}
	end := start + filter.PageSize
	if end > len(p.corpus) {
		end = len(p.corpus)
	}
	return p.corpus[start:end], len(p.corpus), nil
}

func TestExportServiceRendersAllVisibleRows(t *testing.T) {
	const rows = 1101
	repo := &pagingSaleRepo{}
	for i := 0; i < rows; i++ {
		repo.corpus = append(repo.corpus, models.Sale{
			ID:          int64(i + 1),
			Date:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			UserID:      1,
			ProductName: "Desk Lamp",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("39.95"),
			TotalAmount: decimal.RequireFromString("39.95"),
			Region:      "North",
		})
	}
	repo.txns = rows
	repo.units = rows
	repo.total = decimal.RequireFromString("39.95").Mul(decimal.NewFromInt(rows))

	salesSvc := NewSalesService(repo, &mockCache{}, &mockCacheMetrics{}, zap.NewNop(), time.Minute)
	svc := NewExportService(salesSvc)

	doc, contentType, err := svc.RenderSales(context.Background(), adminCtx(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	// Header + every data row + footer: the body must not be truncated at
	// a page boundary while the footer still totals everything.
	lines := bytes.Count(doc, []byte("\n"))
	assert.Equal(t, 1+rows+1, lines)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	salesSvc := NewSalesService(&mockSaleRepo{}, &mockCache{}, &mockCacheMetrics{}, zap.NewNop(), time.Minute)
	svc := NewExportService(salesSvc)

	_, _, err := svc.RenderSales(context.Background(), adminCtx(), ExportFormat("xlsx"))
	require.Error(t, err)
}
