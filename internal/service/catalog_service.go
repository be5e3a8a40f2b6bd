package service

import (
	"context"
	"fmt"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

// CatalogService serves the product catalog.
type CatalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// GetProducts returns all available products.
func (s *CatalogService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// GetProduct returns the product with id or repository.ErrProductNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Seed loads the starter catalog into an empty repository.
func (s *CatalogService) Seed(ctx context.Context) error {
	if err := s.productRepo.Seed(ctx, repository.SeedProducts); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	return nil
}
