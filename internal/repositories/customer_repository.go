package repositories

import (
	"context"

	"crm/internal/models"
)

// CustomerFilter narrows customer listings. Zero values match everything.
type CustomerFilter struct {
	NameContains  string
	EmailContains string
	PhonePrefix   string
}

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	GetAll(ctx context.Context, filter CustomerFilter) ([]models.Customer, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
}
