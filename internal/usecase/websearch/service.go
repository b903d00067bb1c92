package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/search/result"
	"github.com/kailas-cloud/ragtools/internal/metrics"
)

const (
	// DisabledMessage is returned when no usable API key is configured.
	DisabledMessage = "Web search is disabled. Tavily API key not configured."
	// NoResultsMessage is returned when the provider finds nothing.
	NoResultsMessage = "No relevant results found."
	// ErrorPrefix starts the message returned when the provider call fails.
	ErrorPrefix = "Error retrieving web search results: "
	// PlaceholderAPIKey is the sample key shipped in example configs; it counts as unset.
	PlaceholderAPIKey = "your_tavily_api_key_here"
	// DefaultMaxResults is the provider result limit.
	DefaultMaxResults = 5
	// DefaultProvider labels metrics when no provider name is configured.
	DefaultProvider = "tavily"
)

// Config holds the search wrapper settings.
type Config struct {
	APIKey     string
	MaxResults int
	Provider   string
}

// Service flattens web search results into a single text block for prompt context.
type Service struct {
	searcher   Searcher
	apiKey     string
	maxResults int
	provider   string
	logger     *zap.Logger
}

// New creates a search wrapper. searcher may be nil when search is disabled.
func New(cfg Config, searcher Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	provider := cfg.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	return &Service{
		searcher:   searcher,
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		provider:   provider,
		logger:     logger,
	}
}

// Enabled reports whether a usable API key and a provider client are configured.
func (s *Service) Enabled() bool {
	return KeyConfigured(s.apiKey) && s.searcher != nil
}

// Search runs query against the provider and renders the results. It never fails:
// provider errors and the disabled state are reported as text.
func (s *Service) Search(ctx context.Context, query string) string {
	s.logger.Debug("Web search requested",
		zap.String("query", query),
		zap.Bool("configured", s.Enabled()),
	)

	if !s.Enabled() {
		metrics.SearchRequestsTotal.WithLabelValues(s.provider, "disabled").Inc()
		return DisabledMessage
	}

	results, err := s.run(ctx, CleanQuery(query))
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	if len(results) == 0 {
		return NoResultsMessage
	}
	return result.Join(results)
}

// Results runs query against the provider and returns at most the configured number of
// results. It fails with domain.ErrSearchDisabled when no key is configured, with
// domain.ErrInvalidInput for a blank query and with domain.ErrSearchProviderError when
// the provider call fails.
func (s *Service) Results(ctx context.Context, query string) ([]result.Result, error) {
	if !s.Enabled() {
		metrics.SearchRequestsTotal.WithLabelValues(s.provider, "disabled").Inc()
		return nil, domain.ErrSearchDisabled
	}

	cleaned := CleanQuery(query)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	results, err := s.run(ctx, cleaned)
	if err != nil {
		if errors.Is(err, domain.ErrSearchProviderError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchProviderError, err)
	}
	return results, nil
}

// run calls the provider with an already cleaned query and truncates the results.
func (s *Service) run(ctx context.Context, cleaned string) ([]result.Result, error) {
	results, err := s.searcher.Search(ctx, cleaned, s.maxResults)
	if err != nil {
		s.logger.Error("Web search failed",
			zap.String("provider", s.provider),
			zap.String("query", cleaned),
			zap.Error(err),
		)
		metrics.SearchRequestsTotal.WithLabelValues(s.provider, "error").Inc()
		return nil, err //nolint:wrapcheck // callers render or wrap the provider error
	}

	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	if len(results) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues(s.provider, "empty").Inc()
		return nil, nil
	}

	metrics.SearchRequestsTotal.WithLabelValues(s.provider, "success").Inc()
	s.logger.Info("Web search completed",
		zap.String("provider", s.provider),
		zap.String("query", cleaned),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// KeyConfigured reports whether key is neither blank nor the sample placeholder.
func KeyConfigured(key string) bool {
	return strings.TrimSpace(key) != "" && key != PlaceholderAPIKey
}

// CleanQuery trims surrounding whitespace and quote characters; interior quotes are kept.
func CleanQuery(query string) string {
	q := strings.TrimSpace(query)
	q = strings.Trim(q, `"'`)
	return strings.TrimSpace(q)
}
