package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

type productRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product
}

// NewProductRepository creates an in-memory ProductRepository.
func NewProductRepository() repository.ProductRepository {
	return &productRepository{products: make(map[string]entity.Product)}
}

func (r *productRepository) FindAll(_ context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *productRepository) FindByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *productRepository) Seed(_ context.Context, products []entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) > 0 {
		return nil
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return nil
}
