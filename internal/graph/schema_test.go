package graph_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"crm/internal/graph"
	"crm/internal/models"
	"crm/internal/repositories"
	"crm/internal/services"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	schema    graphql.Schema
	customers *repositories.MemoryCustomerRepository
	products  *repositories.MemoryProductRepository
	orders    *repositories.MemoryOrderRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		customers: repositories.NewMemoryCustomerRepository(),
		products:  repositories.NewMemoryProductRepository(),
		orders:    repositories.NewMemoryOrderRepository(),
	}
	log := zap.NewNop()
	schema, err := graph.NewSchema(graph.NewResolver(
		services.NewCustomerService(f.customers, log),
		services.NewProductService(f.products, log),
		services.NewOrderService(f.orders, f.customers, f.products, nil, log),
		log,
	))
	require.NoError(t, err)
	f.schema = schema
	return f
}

func (f *fixture) do(t *testing.T, query string, variables map[string]interface{}) string {
	t.Helper()
	result := graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        context.Background(),
	})
	require.False(t, result.HasErrors(), "unexpected errors: %v", result.Errors)
	out, err := json.Marshal(result.Data)
	require.NoError(t, err)
	return string(out)
}

func TestDecimalInputs(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		price interface{}
		want  string
	}{
		{"string", "12.5", "12.50"},
		{"float", 0.1, "0.10"},
		{"int", 7, "7.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.do(t, `mutation($input: ProductInput!) {
				createProduct(input: $input) { success product { price stock } }
			}`, map[string]interface{}{"input": map[string]interface{}{"name": "Thing", "price": tt.price}})
			assert.JSONEq(t, `{"createProduct": {"success": true, "product": {"price": "`+tt.want+`", "stock": 0}}}`, out)
		})
	}
}

func TestOrderQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := &models.Customer{Name: "Eve", Email: "eve@example.com"}
	require.NoError(t, f.customers.Create(ctx, customer))
	now := time.Now().UTC()
	recent := &models.Order{ID: "recent", CustomerID: customer.ID, Customer: *customer, TotalAmount: decimal.RequireFromString("3.30"), OrderDate: now.Add(-2 * 24 * time.Hour)}
	stale := &models.Order{ID: "stale", CustomerID: customer.ID, Customer: *customer, TotalAmount: decimal.RequireFromString("1.00"), OrderDate: now.Add(-9 * 24 * time.Hour)}
	require.NoError(t, f.orders.Create(ctx, recent))
	require.NoError(t, f.orders.Create(ctx, stale))

	out := f.do(t, `query($from: DateTime!, $to: DateTime!) {
		allOrders(orderDateGte: $from, orderDateLte: $to) {
			edges { node { id customer { email } totalAmount } }
		}
	}`, map[string]interface{}{
		"from": now.Add(-7 * 24 * time.Hour).Format(time.RFC3339),
		"to":   now.Add(time.Minute).Format(time.RFC3339),
	})
	assert.JSONEq(t, `{"allOrders": {"edges": [{"node": {"id": "recent", "customer": {"email": "eve@example.com"}, "totalAmount": "3.30"}}]}}`, out)

	out = f.do(t, `{ order(id: "stale") { id } missing: order(id: "nope") { id } }`, nil)
	assert.JSONEq(t, `{"order": {"id": "stale"}, "missing": null}`, out)

	out = f.do(t, `{ allOrders(customerName: "nobody") { totalCount } }`, nil)
	assert.JSONEq(t, `{"allOrders": {"totalCount": 0}}`, out)
}

func TestCreateOrderMutationFailurePayload(t *testing.T) {
	f := newFixture(t)
	out := f.do(t, `mutation {
		createOrder(input: {customerId: "ghost", productIds: ["p"]}) { success message order { id } }
	}`, nil)
	assert.JSONEq(t, `{"createOrder": {"success": false, "message": "Error creating order: Customer not found", "order": null}}`, out)
}

func TestUpdateLowStockProductsInvalidIncrement(t *testing.T) {
	f := newFixture(t)
	out := f.do(t, `mutation {
		updateLowStockProducts(incrementBy: 0) { success message updatedProducts { id } }
	}`, nil)
	assert.JSONEq(t, `{"updateLowStockProducts": {"success": false, "message": "Error updating low-stock products: incrementBy must be a positive number", "updatedProducts": []}}`, out)
}

func TestCustomerFilters(t *testing.T) {
	f := newFixture(t)
	f.do(t, `mutation {
		bulkCreateCustomers(input: [
			{name: "Ann", email: "ann@shop.io", phone: "+44123"},
			{name: "Ben", email: "ben@example.com", phone: "555-1"}
		]) { errors }
	}`, nil)

	out := f.do(t, `{
		byPhone: allCustomers(phonePattern: "+44") { edges { node { name } } }
		byEmail: allCustomers(email: "EXAMPLE") { edges { node { name } } }
	}`, nil)
	assert.JSONEq(t, `{
		"byPhone": {"edges": [{"node": {"name": "Ann"}}]},
		"byEmail": {"edges": [{"node": {"name": "Ben"}}]}
	}`, out)
}
