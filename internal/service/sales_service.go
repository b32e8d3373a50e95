package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/rls"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type saleRepository interface {
	List(ctx context.Context, pred rls.Predicate, filter models.SaleFilter) ([]models.Sale, int, error)
	Totals(ctx context.Context, pred rls.Predicate) (decimal.Decimal, int64, int64, error)
	ByRegion(ctx context.Context, pred rls.Predicate) ([]models.RegionBreakdown, error)
	TopProducts(ctx context.Context, pred rls.Predicate, limit int) ([]models.ProductBreakdown, error)
	DailyTrend(ctx context.Context, pred rls.Predicate) ([]models.DailyPoint, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool)
}

// SalesService serves sales listings and dashboard aggregates. Every read
// is scoped by the row-level security policy for the calling principal;
// there is no unscoped entry point.
type SalesService struct {
	repo     saleRepository
	cache    summaryCache
	metrics  cacheMetrics
	logger   *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewSalesService creates an instance of SalesService.
func NewSalesService(repo saleRepository, cache summaryCache, metrics cacheMetrics, logger *zap.Logger, cacheTTL time.Duration) *SalesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &SalesService{
		repo:     repo,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Visible lists the sales rows the principal may see, newest-first.
func (s *SalesService) Visible(ctx context.Context, authCtx models.AuthContext, filter models.SaleFilter) ([]models.Sale, *models.Pagination, error) {
	pred := rls.Scope(authCtx.Role, authCtx.UserID, s.now())

	sales, total, err := s.repo.List(ctx, pred, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list sales")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	return sales, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Summary computes the dashboard aggregate over the principal's visible
// rows, with a cache-aside keyed per principal and scope day. The manager
// window shifts daily, so the day component keeps stale windows out.
func (s *SalesService) Summary(ctx context.Context, authCtx models.AuthContext) (*models.SalesSummary, error) {
	now := s.now()
	key := fmt.Sprintf("dashboard:summary:%s:%d:%s", authCtx.Role, authCtx.UserID, now.Format("2006-01-02"))

	if s.cache != nil {
		var cached models.SalesSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	pred := rls.Scope(authCtx.Role, authCtx.UserID, now)

	total, transactions, units, err := s.repo.Totals(ctx, pred)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute sales totals")
	}

	byRegion, err := s.repo.ByRegion(ctx, pred)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute region breakdown")
	}

	topProducts, err := s.repo.TopProducts(ctx, pred, 8)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute product breakdown")
	}

	trend, err := s.repo.DailyTrend(ctx, pred)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute daily trend")
	}

	average := decimal.Zero
	if transactions > 0 {
		average = total.Div(decimal.NewFromInt(transactions)).Round(2)
	}

	summary := &models.SalesSummary{
		TotalSales:     total,
		Transactions:   transactions,
		AverageSale:    average,
		UnitsSold:      units,
		ByRegion:       byRegion,
		TopProducts:    topProducts,
		DailyTrend:     trend,
		GeneratedAtUTC: now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}

	return summary, nil
}
