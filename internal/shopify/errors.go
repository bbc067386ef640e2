package shopify

import (
	"fmt"
	"strings"
)

// APIError is a non-200 response from the Admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify api: status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed when repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Messages []string
	Codes    []string
}

func (e *GraphQLError) Error() string {
	return "shopify graphql: " + strings.Join(e.Messages, "; ")
}

// Throttled reports whether every error is a cost throttle.
func (e *GraphQLError) Throttled() bool {
	if len(e.Codes) == 0 {
		return false
	}
	for _, c := range e.Codes {
		if c != "THROTTLED" {
			return false
		}
	}
	return true
}

func newGraphQLError(items []graphQLErrorItem) *GraphQLError {
	e := &GraphQLError{}
	for _, it := range items {
		e.Messages = append(e.Messages, it.Message)
		e.Codes = append(e.Codes, it.Extensions.Code)
	}
	return e
}
