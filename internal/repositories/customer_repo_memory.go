package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"crm/internal/models"

	"github.com/google/uuid"
)

// MemoryCustomerRepository is an in-memory implementation of CustomerRepository.
type MemoryCustomerRepository struct {
	customers map[string]models.Customer
	mu        sync.RWMutex
}

// NewMemoryCustomerRepository creates a new instance of MemoryCustomerRepository.
func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{
		customers: make(map[string]models.Customer),
	}
}

// GetAll returns the customers matching filter, ordered by name.
func (r *MemoryCustomerRepository) GetAll(_ context.Context, filter CustomerFilter) ([]models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if filter.NameContains != "" && !containsFold(c.Name, filter.NameContains) {
			continue
		}
		if filter.EmailContains != "" && !containsFold(c.Email, filter.EmailContains) {
			continue
		}
		if filter.PhonePrefix != "" && (c.Phone == nil || !strings.HasPrefix(*c.Phone, filter.PhonePrefix)) {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// GetByID returns a customer by its ID.
func (r *MemoryCustomerRepository) GetByID(_ context.Context, id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer with ID %s: %w", id, ErrNotFound)
	}
	return &customer, nil
}

// GetByEmail returns a customer by email.
func (r *MemoryCustomerRepository) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer with email %s: %w", email, ErrNotFound)
}

// Create adds a new customer, enforcing email uniqueness like the database index.
func (r *MemoryCustomerRepository) Create(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.customers {
		if c.Email == customer.Email {
			return fmt.Errorf("failed to create customer: UNIQUE constraint failed: customers.email")
		}
	}
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.customers[customer.ID] = *customer
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
