package health

import "context"

// SearchChecker checks web search provider availability.
type SearchChecker interface {
	HealthCheck(ctx context.Context) error
}
