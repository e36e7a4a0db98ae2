package server

import (
	"fmt"
	"net/http"
)

// ErrInvalidOperatorKey indicates the presented operator key did not match
type ErrInvalidOperatorKey struct{}

func (e *ErrInvalidOperatorKey) Error() string {
	return "invalid operator key"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidOperatorKey:
		return http.StatusUnauthorized
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
