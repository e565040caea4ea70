// Package errors defines service errors that carry an HTTP status, so the
// API layer can distinguish rejected input from backend failures.
package errors

import (
	"fmt"
	"net/http"
)

// ServiceError is an error with an associated HTTP status code.
type ServiceError struct {
	HTTPStatus int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// InvalidInput flags a request that failed validation.
func InvalidInput(message string) *ServiceError {
	return &ServiceError{HTTPStatus: http.StatusBadRequest, Message: message}
}

// RateLimitExceeded flags a client that exhausted its request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		HTTPStatus: http.StatusTooManyRequests,
		Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", limit, window),
	}
}
