package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm/internal/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func checkHealth(t *testing.T, h *handlers.HealthHandler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthHandler_Memory(t *testing.T) {
	status, body := checkHealth(t, handlers.NewHealthHandler(nil, true, zap.NewNop()))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["database"])
	assert.Equal(t, "enabled", body["events"])
}

func TestHealthHandler_Database(t *testing.T) {
	ta := setupApp(t)
	status, body := checkHealth(t, handlers.NewHealthHandler(ta.db, false, zap.NewNop()))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["database"])

	sqlDB, err := ta.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, body = checkHealth(t, handlers.NewHealthHandler(ta.db, false, zap.NewNop()))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "unreachable", body["database"])
}
