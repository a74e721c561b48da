// Package apperr defines the error taxonomy shared by services and handlers.
// Every failure a client can act on is a distinct error value or type, so the
// HTTP layer maps conditions to status codes with errors.Is/errors.As instead
// of string matching, and storage errors never leak to clients.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEligibleBatches: the product has no active, unexpired batch with
	// remaining stock. Distinct from ErrInsufficientStock for diagnostics,
	// same conflict class for clients.
	ErrNoEligibleBatches = errors.New("no non-expired batches available for this product")

	// ErrInsufficientStock: eligible batches exist but cannot cover the
	// requested quantity in full. Nothing was committed.
	ErrInsufficientStock = errors.New("insufficient non-expired stock to fulfill the sale")

	// ErrStaleBatch: a conditioned batch update matched zero rows because a
	// concurrent operation changed the batch after it was read. Retryable by
	// the caller; the whole commit was rolled back.
	ErrStaleBatch = errors.New("batch stock changed concurrently, retry the sale")

	// ErrUnitIntegrity: a touched batch's unit has no resolvable base unit.
	// Reference data is corrupt; reported as a server fault.
	ErrUnitIntegrity = errors.New("batch unit is missing a base unit mapping")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// NotFoundError names the field whose referenced record does not exist, so
// the client can attach the message to the offending input.
type NotFoundError struct {
	Field   string
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFound(field, message string) *NotFoundError {
	return &NotFoundError{Field: field, Message: message}
}

// NotFound builds the usual "<Thing> not found." variant.
func NotFound(field, thing string) *NotFoundError {
	return NewNotFound(field, fmt.Sprintf("%s not found.", thing))
}
