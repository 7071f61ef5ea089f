package repositories

import (
	"context"
	"time"

	"crm/internal/models"
)

// OrderFilter narrows order listings. OrderDateFrom and OrderDateTo are
// inclusive bounds.
type OrderFilter struct {
	CustomerNameContains string
	ProductID            string
	OrderDateFrom        *time.Time
	OrderDateTo          *time.Time
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Create stores the order row and its product associations atomically.
	Create(ctx context.Context, order *models.Order) error
}
