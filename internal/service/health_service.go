package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
)

type healthUserRepository interface {
	Count(ctx context.Context) (int, error)
}

type healthSaleRepository interface {
	Count(ctx context.Context) (int, error)
	LastSaleDate(ctx context.Context) (time.Time, error)
}

type healthProductRepository interface {
	Count(ctx context.Context) (int, error)
}

// HealthService inspects the data set and reports whether the dashboard has
// something sensible to show. Findings downgrade the status to "warning";
// only an unreachable store makes it "error".
type HealthService struct {
	users    healthUserRepository
	sales    healthSaleRepository
	products healthProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewHealthService creates an instance of HealthService.
func NewHealthService(users healthUserRepository, sales healthSaleRepository, products healthProductRepository, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		users:    users,
		sales:    sales,
		products: products,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Check runs the data health probes and assembles the report.
func (s *HealthService) Check(ctx context.Context) *models.HealthReport {
	report := &models.HealthReport{Status: "ok", CheckedAt: s.now()}

	userCount, err := s.users.Count(ctx)
	if err != nil {
		s.logger.Warn("health probe failed", zap.String("probe", "users"), zap.Error(err))
		report.Status = "error"
		report.Warnings = append(report.Warnings, "user count unavailable")
	} else {
		report.Users = userCount
		if userCount == 0 {
			report.Warnings = append(report.Warnings, "no users registered")
		}
	}

	productCount, err := s.products.Count(ctx)
	if err != nil {
		s.logger.Warn("health probe failed", zap.String("probe", "products"), zap.Error(err))
		report.Status = "error"
		report.Warnings = append(report.Warnings, "product count unavailable")
	} else {
		report.Products = productCount
		if productCount == 0 {
			report.Warnings = append(report.Warnings, "product catalog is empty")
		}
	}

	saleCount, err := s.sales.Count(ctx)
	if err != nil {
		s.logger.Warn("health probe failed", zap.String("probe", "sales"), zap.Error(err))
		report.Status = "error"
		report.Warnings = append(report.Warnings, "sales count unavailable")
	} else {
		report.Sales = saleCount
		if saleCount == 0 {
			report.Warnings = append(report.Warnings, "no sales recorded")
		}
	}

	if report.Sales > 0 {
		last, err := s.sales.LastSaleDate(ctx)
		switch {
		case err != nil:
			s.logger.Warn("health probe failed", zap.String("probe", "last_sale"), zap.Error(err))
			report.Warnings = append(report.Warnings, "last sale date unavailable")
		case !last.IsZero():
			report.LastSaleDate = last
			if age := s.now().Sub(last); age > 7*24*time.Hour {
				report.Warnings = append(report.Warnings, fmt.Sprintf("no sales in the last %d days", int(age.Hours()/24)))
			}
		}
	}

	if report.Status == "ok" && len(report.Warnings) > 0 {
		report.Status = "warning"
	}
	return report
}
