package ragtools

import "github.com/kailas-cloud/ragtools/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRead                = domain.ErrRead
	ErrUnsupportedFormat   = domain.ErrUnsupportedFormat
	ErrEmptySource         = domain.ErrEmptySource
	ErrRaggedTable         = domain.ErrRaggedTable
	ErrSearchProviderError = domain.ErrSearchProviderError
	ErrSearchDisabled      = domain.ErrSearchDisabled
	ErrInvalidInput        = domain.ErrInvalidInput
)

// ReadError carries the path of a tabular source that failed to load.
// Use errors.As() to extract it; it also matches ErrRead.
type ReadError = domain.ReadError
