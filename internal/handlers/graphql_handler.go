package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// GraphQLRequest is the body of a GraphQL POST request.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQLHandler serves the CRM GraphQL schema over HTTP.
type GraphQLHandler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewGraphQLHandler creates a new GraphQLHandler.
func NewGraphQLHandler(schema graphql.Schema, logger *zap.Logger) *GraphQLHandler {
	return &GraphQLHandler{
		schema: schema,
		logger: logger,
	}
}

// RegisterRoutes registers the GraphQL endpoint with the Fiber app.
func (h *GraphQLHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/graphql", h.HandleQuery)
	router.Get("/graphql", h.HandleQuery)
}

// HandleQuery executes a GraphQL request. A GET request carries the query,
// operationName and JSON-encoded variables as query parameters.
func (h *GraphQLHandler) HandleQuery(c *fiber.Ctx) error {
	var req GraphQLRequest
	if c.Method() == fiber.MethodGet {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return badRequest(c, "Invalid variables", err)
			}
		}
	} else if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid GraphQL request body", zap.Error(err))
		return badRequest(c, "Invalid request body", err)
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"message": "Must provide query string."}},
		})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.UserContext(),
	})
	if result.HasErrors() {
		h.logger.Debug("GraphQL request returned errors",
			zap.String("operation", req.OperationName),
			zap.Any("errors", result.Errors))
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": []fiber.Map{{"message": message + ": " + err.Error()}},
	})
}
