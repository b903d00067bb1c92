package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/search/result"
	"github.com/kailas-cloud/ragtools/internal/metrics"
)

const (
	// DefaultBaseURL is the public Tavily API endpoint.
	DefaultBaseURL = "https://api.tavily.com"
	// DefaultSearchDepth is the Tavily search depth used when none is configured.
	DefaultSearchDepth = "basic"
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 30 * time.Second

	provider = "tavily"
	// maxErrorBody limits how much of an error response is read into the error message.
	maxErrorBody = 4 << 10
)

// Client is a Tavily search API client.
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	searchDepth string
	logger      *zap.Logger
}

// Config holds the Tavily client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	SearchDepth string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// NewClient creates a Tavily client. Zero config fields fall back to defaults.
func NewClient(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	depth := cfg.SearchDepth
	if depth == "" {
		depth = DefaultSearchDepth
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:        hc,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		searchDepth: depth,
		logger:      logger,
	}
}

type searchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
	ResponseTime float64 `json:"response_time"`
}

// Search implements websearch.Searcher.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]result.Result, error) {
	body, err := json.Marshal(searchRequest{
		Query:       query,
		MaxResults:  limit,
		SearchDepth: c.searchDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()

	resp, err := c.http.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.SearchErrorsTotal.WithLabelValues(provider, "transport").Inc()
		return nil, fmt.Errorf("search request failed: %v: %w", err, domain.ErrSearchProviderError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.SearchErrorsTotal.WithLabelValues(provider, "api_error").Inc()
		return nil, parseAPIError(resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.SearchErrorsTotal.WithLabelValues(provider, "decode").Inc()
		return nil, fmt.Errorf("decode search response: %v: %w", err, domain.ErrSearchProviderError)
	}

	metrics.SearchRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	metrics.SearchResultsTotal.WithLabelValues(provider).Add(float64(len(parsed.Results)))

	c.logger.Debug("Tavily search",
		zap.String("query", query),
		zap.Int("results", len(parsed.Results)),
		zap.Duration("duration", duration),
	)

	out := make([]result.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, result.New(r.Title, r.URL, r.Content, r.Score))
	}
	return out, nil
}

// HealthCheck verifies the API key via the usage endpoint (does not consume credits).
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/usage", http.NoBody)
	if err != nil {
		return fmt.Errorf("build usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("usage request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}
	return nil
}

// parseAPIError extracts a human-readable error from a non-200 response.
// All errors are wrapped with domain.ErrSearchProviderError.
func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if detail := extractDetail(body); detail != "" {
		return fmt.Errorf("search API error %d: %s: %w",
			resp.StatusCode, detail, domain.ErrSearchProviderError)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("search API error %d: %s: %w",
		resp.StatusCode, text, domain.ErrSearchProviderError)
}

// extractDetail reads the "detail" field of an error body. Tavily sends either
// {"detail": "msg"} or {"detail": {"error": "msg"}}.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) != nil || len(parsed.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(parsed.Detail, &s) == nil {
		return s
	}
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(parsed.Detail, &obj) == nil {
		return obj.Error
	}
	return ""
}
