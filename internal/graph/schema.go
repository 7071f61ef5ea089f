// Package graph defines the CRM GraphQL schema: collections of customers,
// products and orders, and the mutations that create them or restock
// low-stock products.
//
// Mutations never fail at the GraphQL level for workflow errors. They return
// a payload with success=false, a null entity and a message instead.
package graph

import (
	"fmt"
	"time"

	"crm/internal/repositories"
	"crm/internal/services"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HelloMessage is returned by the hello query and checked by the heartbeat job.
const HelloMessage = "Hello, GraphQL!"

// Resolver holds the services the schema resolves against.
type Resolver struct {
	customers *services.CustomerService
	products  *services.ProductService
	orders    *services.OrderService
	logger    *zap.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(customers *services.CustomerService, products *services.ProductService, orders *services.OrderService, logger *zap.Logger) *Resolver {
	return &Resolver{
		customers: customers,
		products:  products,
		orders:    orders,
		logger:    logger,
	}
}

// NewSchema builds the executable schema for r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return HelloMessage, nil
				},
			},
			"allCustomers": &graphql.Field{
				Type: graphql.NewNonNull(customerConnectionType),
				Args: graphql.FieldConfigArgument{
					"name":         &graphql.ArgumentConfig{Type: graphql.String},
					"email":        &graphql.ArgumentConfig{Type: graphql.String},
					"phonePattern": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveAllCustomers,
			},
			"allProducts": &graphql.Field{
				Type: graphql.NewNonNull(productConnectionType),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"lowStock": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.resolveAllProducts,
			},
			"allOrders": &graphql.Field{
				Type: graphql.NewNonNull(orderConnectionType),
				Args: graphql.FieldConfigArgument{
					"customerName": &graphql.ArgumentConfig{Type: graphql.String},
					"productId":    &graphql.ArgumentConfig{Type: graphql.ID},
					"orderDateGte": &graphql.ArgumentConfig{Type: graphql.DateTime},
					"orderDateLte": &graphql.ArgumentConfig{Type: graphql.DateTime},
				},
				Resolve: r.resolveAllOrders,
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveOrder,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: graphql.NewNonNull(createCustomerPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInputType)},
				},
				Resolve: r.resolveCreateCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: graphql.NewNonNull(bulkCreateCustomersPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerInputType)))},
				},
				Resolve: r.resolveBulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: graphql.NewNonNull(createProductPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInputType)},
				},
				Resolve: r.resolveCreateProduct,
			},
			"createOrder": &graphql.Field{
				Type: graphql.NewNonNull(createOrderPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInputType)},
				},
				Resolve: r.resolveCreateOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type: graphql.NewNonNull(updateLowStockProductsPayloadType),
				Args: graphql.FieldConfigArgument{
					"threshold":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.DefaultLowStockThreshold},
					"incrementBy": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.DefaultRestockIncrement},
				},
				Resolve: r.resolveUpdateLowStockProducts,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	return schema, nil
}

func (r *Resolver) resolveAllCustomers(p graphql.ResolveParams) (interface{}, error) {
	filter := repositories.CustomerFilter{
		NameContains:  stringArg(p.Args, "name"),
		EmailContains: stringArg(p.Args, "email"),
		PhonePrefix:   stringArg(p.Args, "phonePattern"),
	}
	customers, err := r.customers.GetAllCustomers(p.Context, filter)
	if err != nil {
		return nil, err
	}
	return customerRefs(customers), nil
}

func (r *Resolver) resolveAllProducts(p graphql.ResolveParams) (interface{}, error) {
	filter := repositories.ProductFilter{
		NameContains: stringArg(p.Args, "name"),
	}
	if v, ok := p.Args["lowStock"].(int); ok {
		filter.StockBelow = &v
	}
	products, err := r.products.GetAllProducts(p.Context, filter)
	if err != nil {
		return nil, err
	}
	return productRefs(products), nil
}

func (r *Resolver) resolveAllOrders(p graphql.ResolveParams) (interface{}, error) {
	filter := repositories.OrderFilter{
		CustomerNameContains: stringArg(p.Args, "customerName"),
		ProductID:            stringArg(p.Args, "productId"),
		OrderDateFrom:        timeArg(p.Args, "orderDateGte"),
		OrderDateTo:          timeArg(p.Args, "orderDateLte"),
	}
	orders, err := r.orders.GetAllOrders(p.Context, filter)
	if err != nil {
		return nil, err
	}
	return orderRefs(orders), nil
}

func (r *Resolver) resolveOrder(p graphql.ResolveParams) (interface{}, error) {
	order, err := r.orders.GetOrderByID(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		if services.IsKind(err, services.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

func (r *Resolver) resolveCreateCustomer(p graphql.ResolveParams) (interface{}, error) {
	input := customerInputFrom(p.Args["input"])
	customer, err := r.customers.CreateCustomer(p.Context, input)
	if err != nil {
		return r.failure("Error creating customer", err), nil
	}
	return success("Customer created successfully.", "customer", customer), nil
}

func (r *Resolver) resolveBulkCreateCustomers(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["input"].([]interface{})
	inputs := make([]services.CustomerInput, 0, len(raw))
	for _, item := range raw {
		inputs = append(inputs, customerInputFrom(item))
	}
	created, errs := r.customers.BulkCreateCustomers(p.Context, inputs)
	if errs == nil {
		errs = []string{}
	}
	return map[string]interface{}{
		"customers": customerRefs(created),
		"errors":    errs,
	}, nil
}

func (r *Resolver) resolveCreateProduct(p graphql.ResolveParams) (interface{}, error) {
	args, _ := p.Args["input"].(map[string]interface{})
	input := services.ProductInput{Name: stringArg(args, "name")}
	if price, ok := args["price"].(decimal.Decimal); ok {
		input.Price = price
	}
	if stock, ok := args["stock"].(int); ok {
		input.Stock = stock
	}

	product, err := r.products.CreateProduct(p.Context, input)
	if err != nil {
		return r.failure("Error creating product", err), nil
	}
	return success("Product created successfully.", "product", product), nil
}

func (r *Resolver) resolveCreateOrder(p graphql.ResolveParams) (interface{}, error) {
	args, _ := p.Args["input"].(map[string]interface{})
	customerID := stringArg(args, "customerId")
	rawIDs, _ := args["productIds"].([]interface{})
	productIDs := make([]string, 0, len(rawIDs))
	for _, id := range rawIDs {
		if s, ok := id.(string); ok {
			productIDs = append(productIDs, s)
		}
	}

	order, err := r.orders.CreateOrder(p.Context, customerID, productIDs)
	if err != nil {
		return r.failure("Error creating order", err), nil
	}
	return success("Order created successfully.", "order", order), nil
}

func (r *Resolver) resolveUpdateLowStockProducts(p graphql.ResolveParams) (interface{}, error) {
	threshold, ok := p.Args["threshold"].(int)
	if !ok {
		threshold = services.DefaultLowStockThreshold
	}
	incrementBy, ok := p.Args["incrementBy"].(int)
	if !ok {
		incrementBy = services.DefaultRestockIncrement
	}

	result, err := r.products.RestockLowStock(p.Context, threshold, incrementBy)
	if err != nil {
		payload := r.failure("Error updating low-stock products", err)
		payload["updatedProducts"] = []interface{}{}
		return payload, nil
	}
	return map[string]interface{}{
		"updatedProducts": productRefs(result.UpdatedProducts),
		"message":         result.Message,
		"success":         true,
	}, nil
}

// failure builds the payload of a failed mutation. OperationFailed errors are
// also logged.
func (r *Resolver) failure(prefix string, err error) map[string]interface{} {
	if services.IsKind(err, services.KindOperationFailed) {
		r.logger.Error(prefix, zap.Error(err))
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("%s: %v", prefix, err),
		"success": false,
	}
}

func success(message, key string, entity interface{}) map[string]interface{} {
	return map[string]interface{}{
		key:       entity,
		"message": message,
		"success": true,
	}
}

func customerInputFrom(raw interface{}) services.CustomerInput {
	args, _ := raw.(map[string]interface{})
	input := services.CustomerInput{
		Name:  stringArg(args, "name"),
		Email: stringArg(args, "email"),
	}
	if phone, ok := args["phone"].(string); ok {
		input.Phone = &phone
	}
	return input
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func timeArg(args map[string]interface{}, key string) *time.Time {
	switch v := args[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	default:
		return nil
	}
}
