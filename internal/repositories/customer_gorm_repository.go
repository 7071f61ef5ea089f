package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{
		db: db,
	}
}

// GetAll retrieves the customers matching filter, ordered by name.
func (r *GORMCustomerRepository) GetAll(ctx context.Context, filter CustomerFilter) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})
	if filter.NameContains != "" {
		q = q.Where("LOWER(name) LIKE ?", containsPattern(filter.NameContains))
	}
	if filter.EmailContains != "" {
		q = q.Where("LOWER(email) LIKE ?", containsPattern(filter.EmailContains))
	}
	if filter.PhonePrefix != "" {
		q = q.Where("phone LIKE ?", filter.PhonePrefix+"%")
	}

	var customers []models.Customer
	if err := q.Order("name").Order("id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, nil
}

// GetByID retrieves a single customer by its ID.
func (r *GORMCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer by ID %s: %w", id, err)
	}
	return &customer, nil
}

// GetByEmail retrieves a customer by email.
func (r *GORMCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer by email %s: %w", email, err)
	}
	return &customer, nil
}

// Create inserts a new customer. The unique index on email rejects duplicates.
func (r *GORMCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
