package symcheck

import "github.com/kailas-cloud/symcheck/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSessionNotFound   = domain.ErrSessionNotFound
	ErrInvalidKB         = domain.ErrInvalidKB
	ErrUnsupportedFormat = domain.ErrUnsupportedFormat
)
