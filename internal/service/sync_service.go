package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

// remoteSale is the wire shape of one row from the upstream sales feed.
type remoteSale struct {
	Date        string          `json:"date"`
	UserID      int64           `json:"user_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Region      string          `json:"region"`
}

// SyncConfig holds the upstream feed settings.
type SyncConfig struct {
	SalesAPIURL string
	// HTTPTimeout bounds each upstream call. A hung feed must never stall
	// the caller past this deadline.
	HTTPTimeout time.Duration
}

// SyncService pulls sales rows from the upstream feed and lands them through
// the same per-row insert path the CSV import uses.
type SyncService struct {
	cfg     SyncConfig
	client  *http.Client
	sales   importSaleRepository
	audit   auditRecorder
	metrics importMetrics
	logger  *zap.Logger
}

// NewSyncService creates an instance of SyncService.
func NewSyncService(cfg SyncConfig, sales importSaleRepository, audit auditRecorder, metrics importMetrics, logger *zap.Logger) *SyncService {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
		sales:   sales,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
	}
}

// SyncSales fetches up to days worth of rows from the upstream feed and
// inserts each valid one. Row failures are skipped and counted; only a feed
// level failure aborts the run.
func (s *SyncService) SyncSales(ctx context.Context, days int) (*models.ImportResult, error) {
	if s.cfg.SalesAPIURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sales feed url is not configured")
	}
	if days <= 0 {
		days = 1
	}

	rows, err := s.fetch(ctx, days)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{}
	for i, row := range rows {
		sale, err := row.toSale()
		if err != nil {
			result.Skipped++
			result.Errors = appendRowError(result.Errors, i+1, err.Error())
			continue
		}
		if err := s.sales.Insert(ctx, sale); err != nil {
			s.logger.Warn("sync row insert failed", zap.Int("row", i+1), zap.Error(err))
			result.Skipped++
			result.Errors = appendRowError(result.Errors, i+1, "insert failed")
			continue
		}
		result.Imported++
	}

	if s.metrics != nil {
		s.metrics.AddImportRows("sync", "imported", result.Imported)
		s.metrics.AddImportRows("sync", "skipped", result.Skipped)
	}
	s.audit.Record(ctx, 0, models.AuditActionImportSales, "sales", nil,
		"",
		fmt.Sprintf("source=sync,imported=%d,skipped=%d", result.Imported, result.Skipped))

	s.logger.Info("sales sync completed",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *SyncService) fetch(ctx context.Context, days int) ([]remoteSale, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.HTTPTimeout)
	defer cancel()

	endpoint, err := url.Parse(s.cfg.SalesAPIURL)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid sales feed url")
	}
	query := endpoint.Query()
	query.Set("days", strconv.Itoa(days))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build feed request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sales feed unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Wrap(
			fmt.Errorf("feed returned status %d", resp.StatusCode),
			appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sales feed request failed")
	}

	var rows []remoteSale
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode feed payload")
	}
	return rows, nil
}

func (r remoteSale) toSale() (*models.Sale, error) {
	date, err := parseImportDate(r.Date)
	if err != nil {
		return nil, err
	}
	sale := &models.Sale{
		Date:        date,
		UserID:      r.UserID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TotalAmount: r.TotalAmount,
		Region:      r.Region,
	}
	if sale.ProductName == "" {
		return nil, fmt.Errorf("product_name is required")
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	return sale, nil
}
