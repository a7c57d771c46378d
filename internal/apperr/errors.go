// Package apperr holds the error taxonomy shared by the use cases and the
// HTTP layer. Handlers match these with errors.As to pick a status code.
package apperr

import "fmt"

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func Authorization(format string, args ...interface{}) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError names the product and both quantities so the
// dashboard can show the shortfall verbatim.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s. Available: %d, Requested: %d",
		e.ProductID, e.Available, e.Requested)
}

func InsufficientStock(productID string, available, requested int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Available: available, Requested: requested}
}
