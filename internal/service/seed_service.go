package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
)

type seedProductRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, product *models.Product) error
}

type seedSaleRepository interface {
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, sale *models.Sale) error
}

type seedUser struct {
	username string
	email    string
	password string
	role     models.Role
}

var demoUsers = []seedUser{
	{"admin", "admin@example.com", "Admin123", models.RoleAdmin},
	{"manager", "manager@example.com", "Manager123", models.RoleManager},
	{"demo", "demo@example.com", "Demo1234", models.RoleUser},
}

type seedProduct struct {
	name     string
	category string
	price    string
}

var demoProducts = []seedProduct{
	{"Laptop Pro 15", "Electronics", "1299.00"},
	{"Wireless Mouse", "Electronics", "24.50"},
	{"Standing Desk", "Furniture", "449.00"},
	{"Office Chair", "Furniture", "189.99"},
	{"Notebook A5", "Stationery", "4.20"},
	{"Gel Pen Pack", "Stationery", "7.80"},
	{"Monitor 27", "Electronics", "329.00"},
	{"Desk Lamp", "Furniture", "39.95"},
}

var demoRegions = []string{"North", "South", "East", "West"}

// SeedService populates an empty database with demo accounts, a small
// product catalog and three months of synthetic sales. Every failure is
// downgraded to a warning so a partially seeded database still starts.
type SeedService struct {
	users    importUserRepository
	products seedProductRepository
	sales    seedSaleRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewSeedService creates an instance of SeedService.
func NewSeedService(users importUserRepository, products seedProductRepository, sales seedSaleRepository, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{
		users:    users,
		products: products,
		sales:    sales,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds whatever is missing. Existing usernames are left alone, and the
// catalog and sales are only generated when their tables are empty.
func (s *SeedService) Run(ctx context.Context) {
	userIDs := s.seedUsers(ctx)
	s.seedProducts(ctx)
	s.seedSales(ctx, userIDs)
}

func (s *SeedService) seedUsers(ctx context.Context) []int64 {
	ids := make([]int64, 0, len(demoUsers))
	for _, candidate := range demoUsers {
		exists, err := s.users.UsernameExists(ctx, candidate.username)
		if err != nil {
			s.logger.Warn("seed user lookup failed", zap.String("username", candidate.username), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		user := &models.User{
			Username:     candidate.username,
			Email:        candidate.email,
			PasswordHash: HashPassword(candidate.password),
			Role:         candidate.role,
			IsActive:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			s.logger.Warn("seed user insert failed", zap.String("username", candidate.username), zap.Error(err))
			continue
		}
		ids = append(ids, user.ID)
		s.logger.Info("seeded demo user", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	}
	return ids
}

func (s *SeedService) seedProducts(ctx context.Context) {
	count, err := s.products.Count(ctx)
	if err != nil {
		s.logger.Warn("seed product count failed", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}
	for _, candidate := range demoProducts {
		price, err := decimal.NewFromString(candidate.price)
		if err != nil {
			s.logger.Warn("seed product has invalid price", zap.String("product", candidate.name))
			continue
		}
		product := &models.Product{
			Name:          candidate.name,
			Category:      candidate.category,
			Price:         price,
			StockQuantity: 50,
		}
		if err := s.products.Create(ctx, product); err != nil {
			s.logger.Warn("seed product insert failed", zap.String("product", candidate.name), zap.Error(err))
		}
	}
}

func (s *SeedService) seedSales(ctx context.Context, userIDs []int64) {
	count, err := s.sales.Count(ctx)
	if err != nil {
		s.logger.Warn("seed sales count failed", zap.Error(err))
		return
	}
	if count > 0 || len(userIDs) == 0 {
		return
	}

	// Deterministic source keeps repeated seeds of a fresh database identical.
	rng := rand.New(rand.NewSource(42))
	now := s.now()
	inserted := 0
	for i := 0; i < 100; i++ {
		product := demoProducts[rng.Intn(len(demoProducts))]
		price, err := decimal.NewFromString(product.price)
		if err != nil {
			continue
		}
		quantity := rng.Intn(5) + 1
		sale := &models.Sale{
			Date:        now.AddDate(0, 0, -rng.Intn(90)),
			UserID:      userIDs[rng.Intn(len(userIDs))],
			ProductName: product.name,
			Quantity:    quantity,
			UnitPrice:   price,
			TotalAmount: price.Mul(decimal.NewFromInt(int64(quantity))),
			Region:      demoRegions[rng.Intn(len(demoRegions))],
		}
		if err := s.sales.Insert(ctx, sale); err != nil {
			s.logger.Warn("seed sale insert failed", zap.Error(err))
			continue
		}
		inserted++
	}
	s.logger.Info("seeded demo sales", zap.String("window", fmt.Sprintf("last %d days", 90)), zap.Int("rows", inserted))
}
