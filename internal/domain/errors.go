package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput signals malformed caller input (non-positive budget, negative duration, ...).
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrModelMismatch signals vectors produced by a different embedding model.
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrModelUnavailable signals that the embedding model backend cannot produce vectors.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrSourceUnavailable signals an external data source failure (weather, exchange rates).
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// FieldError wraps ErrInvalidInput with the offending field name.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

// NewFieldError creates an invalid input error for a single field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
