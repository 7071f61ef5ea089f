package services

import (
	"context"
	"fmt"
	"strings"

	"crm/internal/models"
	"crm/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultLowStockThreshold is the stock level below which products are restocked.
	DefaultLowStockThreshold = 10
	// DefaultRestockIncrement is added to the stock of each low-stock product.
	DefaultRestockIncrement = 10
)

// ProductInput carries the fields of a product to create.
type ProductInput struct {
	Name  string          `validate:"required,max=255"`
	Price decimal.Decimal `validate:"gt=0"`
	Stock int             `validate:"gte=0"`
}

var productMessages = validationMessages{
	"Name.required": "Name is required.",
	"Price.gt":      "Price must be a positive number.",
	"Stock.gte":     "Stock cannot be negative number.",
}

// RestockResult describes the outcome of RestockLowStock.
type RestockResult struct {
	UpdatedProducts []models.Product
	Message         string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
	}
}

// GetAllProducts retrieves the products matching filter.
func (s *ProductService) GetAllProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, NewOperationFailedError("failed to list products", err)
	}
	return products, nil
}

// CreateProduct validates input and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return nil, productMessages.toInvalidInput(err)
	}
	if !input.Price.Equal(input.Price.Round(2)) {
		return nil, NewInvalidInputError("Price must have at most 2 decimal places.")
	}

	product := &models.Product{
		Name:  input.Name,
		Price: input.Price,
		Stock: input.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, NewOperationFailedError("failed to create product", err)
	}

	s.logger.Info("product created", zap.String("product_id", product.ID))
	return product, nil
}

// RestockLowStock adds incrementBy to the stock of every product whose stock
// is strictly below threshold.
func (s *ProductService) RestockLowStock(ctx context.Context, threshold, incrementBy int) (*RestockResult, error) {
	if incrementBy <= 0 {
		return nil, NewInvalidInputError("incrementBy must be a positive number")
	}

	updated, err := s.repo.RestockBelow(ctx, threshold, incrementBy)
	if err != nil {
		return nil, NewOperationFailedError("failed to restock products", err)
	}

	result := &RestockResult{UpdatedProducts: updated}
	if len(updated) == 0 {
		result.Message = "No products found with low stock."
	} else {
		result.Message = fmt.Sprintf("Successfully updated stock for %d products.", len(updated))
	}

	s.logger.Info("low-stock products restocked",
		zap.Int("threshold", threshold),
		zap.Int("increment_by", incrementBy),
		zap.Int("updated", len(updated)))
	return result, nil
}
