package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm/internal/models"
	"crm/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderCreatedRoutingKey is the routing key of order creation events.
const OrderCreatedRoutingKey = "order.created"

// EventPublisher publishes domain events. rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// OrderCreatedEvent is published after an order has been committed.
type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ProductIDs  []string        `json:"productIds"`
	OrderDate   time.Time       `json:"orderDate"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	publisher    EventPublisher // optional
	logger       *zap.Logger
	now          func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// GetAllOrders retrieves the orders matching filter.
func (s *OrderService) GetAllOrders(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, NewOperationFailedError("failed to list orders", err)
	}
	return orders, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Order not found")
		}
		return nil, NewOperationFailedError("failed to load order", err)
	}
	return order, nil
}

// CreateOrder creates an order for customerID over productIDs.
//
// Validation runs in order: the customer must exist, productIDs must not be
// empty, and every product id must exist (all missing ids are reported
// together). Duplicate ids are collapsed. The total is the exact decimal sum
// of the distinct products' current prices. Stock is not decremented.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, productIDs []string) (*models.Order, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Customer not found")
		}
		return nil, NewOperationFailedError("failed to load customer", err)
	}

	if len(productIDs) == 0 {
		return nil, NewInvalidInputError("order must contain at least one product")
	}

	ids := distinct(productIDs)
	found, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, NewOperationFailedError("failed to load products", err)
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]models.Product, 0, len(ids))
	var missing []string
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		products = append(products, p)
	}
	if len(missing) > 0 {
		return nil, NewNotFoundError("Product(s) not found: " + strings.Join(missing, ", "))
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}

	order := &models.Order{
		CustomerID:  customer.ID,
		Customer:    *customer,
		Products:    products,
		TotalAmount: total,
		OrderDate:   s.now().UTC(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("failed to create order", zap.String("customer_id", customer.ID), zap.Error(err))
		return nil, NewOperationFailedError("failed to create order", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customer.ID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))

	s.publishOrderCreated(ctx, order)
	return order, nil
}

// publishOrderCreated is best effort: the order is already committed.
func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		ProductIDs:  order.ProductIDs(),
		OrderDate:   order.OrderDate,
	}
	if err := s.publisher.Publish(ctx, OrderCreatedRoutingKey, event); err != nil {
		s.logger.Warn("failed to publish order created event", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
