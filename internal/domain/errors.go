package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDuplicateName indicates a name collision within the entity's uniqueness scope.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrParentInactive indicates the parent catalog entity is deactivated.
	ErrParentInactive = errors.New("parent inactive")
	// ErrHierarchyMismatch indicates the subcategory does not belong to the given category.
	ErrHierarchyMismatch = errors.New("subcategory does not belong to category")
	// ErrHasDependents indicates the entity still has child rows and cannot be deleted.
	ErrHasDependents = errors.New("entity has dependents")
	// ErrProductInactive indicates the product is deactivated and cannot be sold.
	ErrProductInactive = errors.New("product inactive")
	// ErrInsufficientStock indicates the requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyCart indicates checkout was attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidState indicates an order status transition that is not permitted.
	ErrInvalidState = errors.New("invalid order state transition")
	// ErrNotCancellable indicates the order status does not allow cancellation.
	ErrNotCancellable = errors.New("order not cancellable")
	// ErrDeleteNotAllowed indicates the order left pending and can only be cancelled.
	ErrDeleteNotAllowed = errors.New("order delete not allowed")
)

// ValidationError reports a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a field-level validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
