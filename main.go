package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm/internal/config"
	"crm/internal/database"
	"crm/internal/graph"
	"crm/internal/handlers"
	"crm/internal/logging"
	"crm/internal/middleware"
	"crm/internal/repositories"
	"crm/internal/services"
	"crm/pkg/rabbitmq"
)

// App is the wired CRM API server.
type App struct {
	Fiber   *fiber.App
	closers []func() error
}

// Close releases the message broker and database connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close app: %v", errs)
	}
	return nil
}

// NewApp opens the store, optionally connects to RabbitMQ and builds the
// Fiber app serving /graphql and /health.
func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	var (
		db           *gorm.DB
		customerRepo repositories.CustomerRepository
		productRepo  repositories.ProductRepository
		orderRepo    repositories.OrderRepository
	)
	if cfg.DatabaseDriver == "memory" {
		customerRepo = repositories.NewMemoryCustomerRepository()
		productRepo = repositories.NewMemoryProductRepository()
		orderRepo = repositories.NewMemoryOrderRepository()
	} else {
		var err error
		db, err = database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)

		customerRepo = repositories.NewGORMCustomerRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
		orderRepo = repositories.NewGORMOrderRepository(db)
	}
	logger.Info("store ready", zap.String("driver", cfg.DatabaseDriver))

	// Order events are optional; without a broker orders are simply not announced.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, mq.Close)
		if err := mq.ConsumeOrderEvents(logOrderEvent(logger)); err != nil {
			a.Close()
			return nil, err
		}
		publisher = mq
	}

	resolver := graph.NewResolver(
		services.NewCustomerService(customerRepo, logger),
		services.NewProductService(productRepo, logger),
		services.NewOrderService(orderRepo, customerRepo, productRepo, publisher, logger),
		logger,
	)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		a.Close()
		return nil, err
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.AppEnv == "production"})
	app.Use(middleware.RequestLogger(logger))
	handlers.NewGraphQLHandler(schema, logger).RegisterRoutes(app)
	handlers.NewHealthHandler(db, publisher != nil, logger).RegisterRoutes(app)

	a.Fiber = app
	return a, nil
}

// logOrderEvent returns the consumer handler recording every order.created event.
func logOrderEvent(logger *zap.Logger) rabbitmq.Handler {
	return func(msg amqp.Delivery) error {
		var event services.OrderCreatedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", msg.RoutingKey, err)
		}
		logger.Info("order event received",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("order_id", event.OrderID),
			zap.String("customer_id", event.CustomerID),
			zap.String("total_amount", event.TotalAmount.StringFixed(2)),
			zap.Strings("product_ids", event.ProductIDs))
		return nil
	}
}

func main() {
	v, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	a, err := NewApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}
	defer a.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.AppPort))
		if err := a.Fiber.Listen(cfg.AppPort); err != nil {
			logger.Error("server stopped", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("shutting down server")
	if err := a.Fiber.Shutdown(); err != nil {
		logger.Error("error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}
