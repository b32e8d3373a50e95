package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
	"github.com/tirs/dashboard/pkg/export"
)

// ExportFormat selects the rendering backend for a sales report.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

var salesExportHeaders = []string{"Date", "User ID", "Product", "Quantity", "Unit Price", "Total", "Region"}

// exportPageSize matches the repository's page-size ceiling; asking for
// more would be silently clamped and break the paging loop.
const exportPageSize = 500

// ExportService renders the caller's visible sales rows into downloadable
// reports. Visibility is delegated to SalesService, so the export can never
// widen what the principal sees on screen.
type ExportService struct {
	sales *SalesService
	csv   *export.CSVExporter
	pdf   *export.PDFExporter
}

// NewExportService creates an instance of ExportService.
func NewExportService(sales *SalesService) *ExportService {
	return &ExportService{
		sales: sales,
		csv:   export.NewCSVExporter(),
		pdf:   export.NewPDFExporter(),
	}
}

// RenderSales builds a sales report in the requested format and returns the
// document bytes plus its content type.
func (s *ExportService) RenderSales(ctx context.Context, authCtx models.AuthContext, format ExportFormat) ([]byte, string, error) {
	sales, err := s.visibleAll(ctx, authCtx)
	if err != nil {
		return nil, "", err
	}
	summary, err := s.sales.Summary(ctx, authCtx)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Sales Report (%s)", authCtx.Username),
		Headers: salesExportHeaders,
		Rows:    make([][]string, 0, len(sales)),
		Footer: []string{
			"Total", "", "",
			strconv.FormatInt(summary.UnitsSold, 10),
			"",
			summary.TotalSales.StringFixed(2),
			"",
		},
	}
	for _, sale := range sales {
		data.Rows = append(data.Rows, []string{
			sale.Date.Format("2006-01-02"),
			strconv.FormatInt(sale.UserID, 10),
			sale.ProductName,
			strconv.Itoa(sale.Quantity),
			sale.UnitPrice.StringFixed(2),
			sale.TotalAmount.StringFixed(2),
			sale.Region,
		})
	}

	switch format {
	case FormatCSV:
		doc, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return doc, "text/csv", nil
	case FormatPDF:
		doc, err := s.pdf.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return doc, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// visibleAll pages through every row the principal may see so the report
// body always agrees with the footer totals.
func (s *ExportService) visibleAll(ctx context.Context, authCtx models.AuthContext) ([]models.Sale, error) {
	var all []models.Sale
	for page := 1; ; page++ {
		batch, _, err := s.sales.Visible(ctx, authCtx, models.SaleFilter{Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < exportPageSize {
			return all, nil
		}
	}
}

