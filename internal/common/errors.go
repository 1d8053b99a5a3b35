package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidationError - missing or blank required input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError - a directly addressed entity does not exist
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError - caller lacks the admin capability.
// Surfaces as 400, matching the behavior clients already depend on.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func NewAuthorizationError(format string, args ...interface{}) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a service error to its response status
func HTTPStatus(err error) int {
	var validation *ValidationError
	var notFound *NotFoundError
	var authz *AuthorizationError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &authz):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes the standard {"error": ...} body and stops the request
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(HTTPStatus(err), gin.H{"error": err.Error()})
}
