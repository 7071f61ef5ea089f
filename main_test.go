package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"crm/internal/config"
)

func testConfig(t *testing.T, driver, dsn string) config.Config {
	t.Helper()
	v, err := config.New()
	require.NoError(t, err)
	v.Set("DATABASE_DRIVER", driver)
	v.Set("DATABASE_DSN", dsn)
	v.Set("RABBITMQ_URL", "")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func doJSON(t *testing.T, a *App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}

func graphQLRequest(query string) *http.Request {
	body, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNewApp(t *testing.T) {
	for _, tc := range []struct {
		name     string
		driver   string
		database string
	}{
		{"memory", "memory", "memory"},
		{"sqlite", "sqlite", "ok"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a, err := NewApp(testConfig(t, tc.driver, filepath.Join(t.TempDir(), "crm.db")), zap.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, a.Close()) })

			status, health := doJSON(t, a, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "healthy", health["status"])
			assert.Equal(t, tc.database, health["database"])
			assert.Equal(t, "disabled", health["events"])

			status, out := doJSON(t, a, graphQLRequest(`{ hello }`))
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, map[string]interface{}{"hello": "Hello, GraphQL!"}, out["data"])
		})
	}
}

func TestNewApp_RoundTrip(t *testing.T) {
	a, err := NewApp(testConfig(t, "memory", ""), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, out := doJSON(t, a, graphQLRequest(`mutation {
		createCustomer(input: {name: "Alice", email: "alice@example.com"}) { success customer { id } }
	}`))
	payload := out["data"].(map[string]interface{})["createCustomer"].(map[string]interface{})
	assert.Equal(t, true, payload["success"])

	_, out = doJSON(t, a, graphQLRequest(`{ allCustomers { totalCount } }`))
	assert.Equal(t, float64(1), out["data"].(map[string]interface{})["allCustomers"].(map[string]interface{})["totalCount"])
}

func TestNewApp_BadBroker(t *testing.T) {
	cfg := testConfig(t, "memory", "")
	cfg.RabbitMQURL = "not-a-url"

	_, err := NewApp(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "failed to connect to RabbitMQ")
}

func TestLogOrderEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := logOrderEvent(zap.New(core))

	err := handle(amqp.Delivery{
		RoutingKey: "order.created",
		Body:       []byte(`{"orderId":"o1","customerId":"c1","totalAmount":"1200.30","productIds":["p1","p2"],"orderDate":"2026-10-19T09:00:00Z"}`),
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("order event received").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "o1", fields["order_id"])
	assert.Equal(t, "1200.30", fields["total_amount"])

	err = handle(amqp.Delivery{RoutingKey: "order.created", Body: []byte("not json")})
	assert.ErrorContains(t, err, "failed to decode order.created event")
}
