package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the retrieval pipeline. Per-query failures
// (ErrEmptyQuery, ErrEmbedding, ErrIndexUnavailable) are surfaced to the
// display layer; ErrCollectionNotFound is fatal at startup.
var (
	ErrEmptyQuery         = errors.New("empty query")
	ErrQueryTooLong       = errors.New("query too long")
	ErrEmbedding          = errors.New("embedding failed")
	ErrIndexUnavailable   = errors.New("vector index unavailable")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrVectorDimension    = errors.New("vector dimension mismatch")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
