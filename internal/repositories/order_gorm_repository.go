package repositories

import (
	"context"
	"errors"
	"fmt"

	"crm/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func (r *GORMOrderRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Customer").Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("name")
	})
}

// GetAll retrieves the orders matching filter, oldest first, with their
// customer and products loaded.
func (r *GORMOrderRepository) GetAll(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.withAssociations(ctx).Model(&models.Order{})
	if filter.CustomerNameContains != "" {
		q = q.Where("customer_id IN (?)", r.db.Model(&models.Customer{}).
			Select("id").
			Where("LOWER(name) LIKE ?", containsPattern(filter.CustomerNameContains)))
	}
	if filter.ProductID != "" {
		q = q.Where("id IN (?)", r.db.Table("order_products").
			Select("order_id").
			Where("product_id = ?", filter.ProductID))
	}
	if filter.OrderDateFrom != nil {
		q = q.Where("order_date >= ?", filter.OrderDateFrom.UTC())
	}
	if filter.OrderDateTo != nil {
		q = q.Where("order_date <= ?", filter.OrderDateTo.UTC())
	}

	var orders []models.Order
	if err := q.Order("order_date").Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.withAssociations(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create writes the order row and its order_products rows in one
// transaction. The referenced customer and products must already exist;
// they are linked, never upserted.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Customer", "Products.*").Create(order).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}
