package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm/internal/models"
	"crm/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CustomerInput carries the fields of a customer to create.
type CustomerInput struct {
	Name  string  `validate:"required,max=255"`
	Email string  `validate:"required,email,max=255"`
	Phone *string `validate:"omitempty,max=20"`
}

var customerMessages = validationMessages{
	"Name.required":  "Name is required.",
	"Email.required": "Email is required.",
	"Email.email":    "Email is not a valid email address.",
	"Phone.max":      "Phone must be at most 20 characters.",
}

// CustomerService handles business logic related to customers.
type CustomerService struct {
	repo     repositories.CustomerRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo repositories.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
	}
}

// GetAllCustomers retrieves the customers matching filter.
func (s *CustomerService) GetAllCustomers(ctx context.Context, filter repositories.CustomerFilter) ([]models.Customer, error) {
	customers, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, NewOperationFailedError("failed to list customers", err)
	}
	return customers, nil
}

// CreateCustomer validates input and stores a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			input.Phone = nil
		} else {
			input.Phone = &phone
		}
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, customerMessages.toInvalidInput(err)
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	switch {
	case err == nil && existing != nil:
		return nil, NewInvalidInputError(fmt.Sprintf("Email %s is already registered.", input.Email))
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, NewOperationFailedError("failed to check email", err)
	}

	customer := &models.Customer{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, NewOperationFailedError("failed to create customer", err)
	}

	s.logger.Info("customer created", zap.String("customer_id", customer.ID))
	return customer, nil
}

// BulkCreateCustomers creates each customer independently. Failures do not
// abort the batch; each one is reported as "Error for email <email>: <reason>".
func (s *CustomerService) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) ([]models.Customer, []string) {
	created := make([]models.Customer, 0, len(inputs))
	var errs []string
	for _, input := range inputs {
		customer, err := s.CreateCustomer(ctx, input)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Error for email %s: %v", input.Email, err))
			continue
		}
		created = append(created, *customer)
	}
	if len(errs) > 0 {
		s.logger.Warn("bulk customer creation had failures",
			zap.Int("created", len(created)),
			zap.Int("failed", len(errs)))
	}
	return created, errs
}
