package websearch

import (
	"context"

	"github.com/kailas-cloud/ragtools/internal/domain/search/result"
)

// Searcher queries a web search provider for at most limit results.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]result.Result, error)
}
