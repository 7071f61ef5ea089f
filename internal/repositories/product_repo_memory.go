package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"crm/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns the products matching filter, ordered by name.
func (r *MemoryProductRepository) GetAll(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.NameContains != "" && !containsFold(p.Name, filter.NameContains) {
			continue
		}
		if filter.StockBelow != nil && p.Stock >= *filter.StockBelow {
			continue
		}
		list = append(list, p)
	}
	sortProducts(list)
	return list, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetByIDs returns the existing products among ids.
func (r *MemoryProductRepository) GetByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	var list []models.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && !seen[id] {
			seen[id] = true
			list = append(list, p)
		}
	}
	return list, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// RestockBelow raises the stock of every product below threshold under one lock.
func (r *MemoryProductRepository) RestockBelow(_ context.Context, threshold, increment int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated []models.Product
	now := time.Now()
	for id, p := range r.products {
		if p.Stock >= threshold {
			continue
		}
		p.Stock += increment
		p.UpdatedAt = now
		r.products[id] = p
		updated = append(updated, p)
	}
	sortProducts(updated)
	return updated, nil
}

func sortProducts(list []models.Product) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}
