// Package gqlclient is a small typed GraphQL-over-HTTP client.
package gqlclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Query is a parsed GraphQL document.
type Query struct {
	source    string
	operation string
}

// NewQuery parses source and returns it as a Query. The document must
// contain exactly one operation.
func NewQuery(source string) (*Query, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: source})
	if err != nil {
		return nil, fmt.Errorf("invalid GraphQL document: %w", err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("GraphQL document must contain exactly one operation, got %d", len(doc.Operations))
	}
	return &Query{source: source, operation: doc.Operations[0].Name}, nil
}

// MustQuery is like NewQuery but panics on error. Use it for package-level documents.
func MustQuery(source string) *Query {
	q, err := NewQuery(source)
	if err != nil {
		panic(err)
	}
	return q
}

// Operation returns the operation name, empty for anonymous operations.
func (q *Query) Operation() string {
	return q.operation
}

// Executor runs GraphQL documents. Client implements it.
type Executor interface {
	Execute(ctx context.Context, q *Query, variables map[string]interface{}, out interface{}) error
}

// ErrTransport is wrapped by every error caused by the HTTP exchange rather
// than by the GraphQL server.
var ErrTransport = errors.New("graphql transport error")

// ResponseError carries the errors array of a GraphQL response.
type ResponseError struct {
	Messages []string
}

func (e *ResponseError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// Client posts GraphQL documents to a single endpoint.
type Client struct {
	url     string
	timeout time.Duration
}

// New creates a Client for url. A zero timeout means no timeout.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
	}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute sends q with variables and decodes the data member into out.
func (c *Client) Execute(ctx context.Context, q *Query, variables map[string]interface{}, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	agent := fiber.Post(c.url)
	if timeout := c.effectiveTimeout(ctx); timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.JSON(request{Query: q.source, OperationName: q.operation, Variables: variables})
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrTransport, errors.Join(errs...))
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: status %d, undecodable body: %v", ErrTransport, status, err)
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			messages[i] = e.Message
		}
		return &ResponseError{Messages: messages}
	}
	if status != fiber.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrTransport, status)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return &ResponseError{Messages: []string{"response has no data"}}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", q.operationLabel(), err)
	}
	return nil
}

func (c *Client) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func (q *Query) operationLabel() string {
	if q.operation == "" {
		return "anonymous"
	}
	return q.operation
}
