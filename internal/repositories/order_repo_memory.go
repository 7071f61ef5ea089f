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

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
// Orders keep the customer and product values they were created with.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns the orders matching filter, oldest first.
func (r *MemoryOrderRepository) GetAll(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.CustomerNameContains != "" && !containsFold(o.Customer.Name, filter.CustomerNameContains) {
			continue
		}
		if filter.ProductID != "" && !hasProduct(o, filter.ProductID) {
			continue
		}
		if filter.OrderDateFrom != nil && o.OrderDate.Before(*filter.OrderDateFrom) {
			continue
		}
		if filter.OrderDateTo != nil && o.OrderDate.After(*filter.OrderDateTo) {
			continue
		}
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OrderDate.Equal(list[j].OrderDate) {
			return list[i].OrderDate.Before(list[j].OrderDate)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := *order
	stored.Products = append([]models.Product(nil), order.Products...)
	r.orders[order.ID] = stored
	return nil
}

func hasProduct(o models.Order, productID string) bool {
	for _, p := range o.Products {
		if p.ID == productID {
			return true
		}
	}
	return false
}
