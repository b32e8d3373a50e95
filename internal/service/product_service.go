package service

import (
	"context"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type productRepository interface {
	List(ctx context.Context) ([]models.Product, error)
}

// ProductService serves the product catalog. The catalog is shared: unlike
// sales it carries no per-row ownership, so every authenticated role reads
// the same rows.
type ProductService struct {
	repo productRepository
}

// NewProductService creates an instance of ProductService.
func NewProductService(repo productRepository) *ProductService {
	return &ProductService{repo: repo}
}

// List returns all products.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list products")
	}
	return products, nil
}
