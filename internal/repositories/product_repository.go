package repositories

import (
	"context"

	"crm/internal/models"
)

// ProductFilter narrows product listings. StockBelow, when set, keeps
// products whose stock is strictly less than its value.
type ProductFilter struct {
	NameContains string
	StockBelow   *int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// GetByIDs returns the products that exist among ids. Missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// RestockBelow adds increment to the stock of every product whose stock
	// is below threshold and returns those products with their new stock.
	RestockBelow(ctx context.Context, threshold, increment int) ([]models.Product, error)
}
