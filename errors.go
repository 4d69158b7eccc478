package wayfarer

import "github.com/kailas-cloud/wayfarer/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrAlreadyExists     = domain.ErrAlreadyExists
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrVectorDimMismatch = domain.ErrVectorDimMismatch
	ErrModelMismatch     = domain.ErrModelMismatch
	ErrModelUnavailable  = domain.ErrModelUnavailable
	ErrNotImplemented    = domain.ErrNotImplemented
)
