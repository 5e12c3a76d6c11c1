package queryrules

import "github.com/kailas-cloud/queryrules/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrInvalidRule   = domain.ErrInvalidRule
)
