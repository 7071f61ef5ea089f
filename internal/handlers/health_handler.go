package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports whether the API and its store are reachable.
type HealthHandler struct {
	db     *gorm.DB
	events bool
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db is nil when the in-memory
// store is used.
func NewHealthHandler(db *gorm.DB, events bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Check)
}

// Check pings the database and answers 200 or 503.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	database := "memory"
	if h.db != nil {
		database = "ok"
		if err := h.ping(c); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			database = "unreachable"
			status = fiber.StatusServiceUnavailable
		}
	}

	events := "disabled"
	if h.events {
		events = "enabled"
	}

	health := "healthy"
	if status != fiber.StatusOK {
		health = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   health,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
		"events":   events,
	})
}

func (h *HealthHandler) ping(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c.UserContext())
}
