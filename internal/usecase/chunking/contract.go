package chunking

import (
	"context"

	"github.com/kailas-cloud/ragtools/internal/domain/table"
)

// TableReader loads a tabular file into memory.
type TableReader interface {
	Read(ctx context.Context, path string) (*table.Table, error)
}
