package graph

import (
	"crm/internal/models"

	"github.com/graphql-go/graphql"
)

func customerField(fn func(c *models.Customer) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		c, ok := p.Source.(*models.Customer)
		if !ok {
			return nil, nil
		}
		return fn(c), nil
	}
}

func productField(fn func(p *models.Product) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		product, ok := p.Source.(*models.Product)
		if !ok {
			return nil, nil
		}
		return fn(product), nil
	}
}

func orderField(fn func(o *models.Order) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		o, ok := p.Source.(*models.Order)
		if !ok {
			return nil, nil
		}
		return fn(o), nil
	}
}

var customerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Customer",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: customerField(func(c *models.Customer) interface{} { return c.ID })},
		"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: customerField(func(c *models.Customer) interface{} { return c.Name })},
		"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: customerField(func(c *models.Customer) interface{} { return c.Email })},
		"phone": &graphql.Field{Type: graphql.String, Resolve: customerField(func(c *models.Customer) interface{} {
			if c.Phone == nil {
				return nil
			}
			return *c.Phone
		})},
		"createdAt": &graphql.Field{Type: graphql.DateTime, Resolve: customerField(func(c *models.Customer) interface{} { return c.CreatedAt })},
		"updatedAt": &graphql.Field{Type: graphql.DateTime, Resolve: customerField(func(c *models.Customer) interface{} { return c.UpdatedAt })},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: productField(func(p *models.Product) interface{} { return p.ID })},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: productField(func(p *models.Product) interface{} { return p.Name })},
		"price":     &graphql.Field{Type: graphql.NewNonNull(Decimal), Resolve: productField(func(p *models.Product) interface{} { return p.Price })},
		"stock":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: productField(func(p *models.Product) interface{} { return p.Stock })},
		"createdAt": &graphql.Field{Type: graphql.DateTime, Resolve: productField(func(p *models.Product) interface{} { return p.CreatedAt })},
		"updatedAt": &graphql.Field{Type: graphql.DateTime, Resolve: productField(func(p *models.Product) interface{} { return p.UpdatedAt })},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: orderField(func(o *models.Order) interface{} { return o.ID })},
		"customer": &graphql.Field{Type: graphql.NewNonNull(customerType), Resolve: orderField(func(o *models.Order) interface{} { return &o.Customer })},
		"products": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))), Resolve: orderField(func(o *models.Order) interface{} {
			return productRefs(o.Products)
		})},
		"totalAmount": &graphql.Field{Type: graphql.NewNonNull(Decimal), Resolve: orderField(func(o *models.Order) interface{} { return o.TotalAmount })},
		"orderDate":   &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime), Resolve: orderField(func(o *models.Order) interface{} { return o.OrderDate })},
		"createdAt":   &graphql.Field{Type: graphql.DateTime, Resolve: orderField(func(o *models.Order) interface{} { return o.CreatedAt })},
		"updatedAt":   &graphql.Field{Type: graphql.DateTime, Resolve: orderField(func(o *models.Order) interface{} { return o.UpdatedAt })},
	},
})

// connectionType wraps node in a {totalCount, edges{node}} collection. The
// source of the connection is a []interface{} of nodes.
func connectionType(name string, node *graphql.Object) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"node": &graphql.Field{
				Type: graphql.NewNonNull(node),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source, nil
				},
			},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"totalCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nodes, _ := p.Source.([]interface{})
					return len(nodes), nil
				},
			},
			"edges": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(edge))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nodes, _ := p.Source.([]interface{})
					return nodes, nil
				},
			},
		},
	})
}

var (
	customerConnectionType = connectionType("Customer", customerType)
	productConnectionType  = connectionType("Product", productType)
	orderConnectionType    = connectionType("Order", orderType)
)

var customerInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CustomerInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var productInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(Decimal)},
		"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 0},
	},
})

var orderInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OrderInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"productIds": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
	},
})

// payloadType builds a mutation payload object. Payload sources are
// map[string]interface{} values resolved by key.
func payloadType(name string, fields graphql.Fields) *graphql.Object {
	fields["message"] = &graphql.Field{Type: graphql.NewNonNull(graphql.String)}
	fields["success"] = &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

var (
	createCustomerPayloadType = payloadType("CreateCustomerPayload", graphql.Fields{
		"customer": &graphql.Field{Type: customerType},
	})
	createProductPayloadType = payloadType("CreateProductPayload", graphql.Fields{
		"product": &graphql.Field{Type: productType},
	})
	createOrderPayloadType = payloadType("CreateOrderPayload", graphql.Fields{
		"order": &graphql.Field{Type: orderType},
	})
	updateLowStockProductsPayloadType = payloadType("UpdateLowStockProductsPayload", graphql.Fields{
		"updatedProducts": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))},
	})
	bulkCreateCustomersPayloadType = graphql.NewObject(graphql.ObjectConfig{
		Name: "BulkCreateCustomersPayload",
		Fields: graphql.Fields{
			"customers": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerType)))},
			"errors":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		},
	})
)

func customerRefs(list []models.Customer) []interface{} {
	out := make([]interface{}, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}

func productRefs(list []models.Product) []interface{} {
	out := make([]interface{}, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}

func orderRefs(list []models.Order) []interface{} {
	out := make([]interface{}, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}
