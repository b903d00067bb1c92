package ragtools

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragtools/internal/domain/chunk"
	"github.com/kailas-cloud/ragtools/internal/domain/search/result"
	"github.com/kailas-cloud/ragtools/internal/repository/tabular"
	"github.com/kailas-cloud/ragtools/internal/transport/tavily"
	chunkinguc "github.com/kailas-cloud/ragtools/internal/usecase/chunking"
	healthuc "github.com/kailas-cloud/ragtools/internal/usecase/health"
	websearchuc "github.com/kailas-cloud/ragtools/internal/usecase/websearch"
)

// Internal interfaces, substituted in tests.
type chunkUseCase interface {
	ProcessFile(ctx context.Context, path string) ([]chunk.Chunk, error)
}

type searchUseCase interface {
	Search(ctx context.Context, query string) string
	Results(ctx context.Context, query string) ([]result.Result, error)
	Enabled() bool
}

// Client is the ragtools SDK entry point. It is safe for concurrent use.
type Client struct {
	chunkSvc  chunkUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. Without WithTavily, web search returns the disabled message.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	// Internal services log through zap; SDK consumers observe through slog.
	nop := zap.NewNop()

	readerOpts := []tabular.Option{tabular.WithNAValues(cfg.naValues...)}
	if cfg.sheet != "" {
		readerOpts = append(readerOpts, tabular.WithSheet(cfg.sheet))
	}
	chunkSvc := chunkinguc.New(tabular.New(readerOpts...), nop).
		WithLimits(cfg.maxSamples, cfg.maxUniqueValues).
		WithKeywords(cfg.medicineKeywords, cfg.conditionKeywords)

	// Pass nil interfaces (not typed nil pointers) when search is not configured.
	var searcher websearchuc.Searcher
	var checker healthuc.SearchChecker
	if websearchuc.KeyConfigured(cfg.tavilyKey) {
		client := tavily.NewClient(&tavily.Config{
			APIKey:      cfg.tavilyKey,
			BaseURL:     cfg.tavilyBaseURL,
			SearchDepth: cfg.searchDepth,
			Timeout:     cfg.timeout,
			HTTPClient:  cfg.httpClient,
			Logger:      nop,
		})
		searcher, checker = client, client
	}
	searchSvc := websearchuc.New(websearchuc.Config{
		APIKey:     cfg.tavilyKey,
		MaxResults: cfg.maxResults,
	}, searcher, nop)

	return &Client{
		chunkSvc:  chunkSvc,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(checker, nop),
		obs:       obs,
	}
}

// Chunker returns the tabular chunking service.
func (c *Client) Chunker() *ChunkService {
	return &ChunkService{svc: c.chunkSvc, obs: c.obs}
}

// WebSearch returns the web search service.
func (c *Client) WebSearch() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// ChunkService converts tabular files into ordered text chunks.
type ChunkService struct {
	svc chunkUseCase
	obs *observer
}

// Process loads path and returns the header chunk, one chunk per row and the summary
// chunk. Load failures match ErrRead.
func (s *ChunkService) Process(ctx context.Context, path string) (_ []Chunk, err error) {
	start := time.Now()
	defer func() { s.obs.observe("chunk", start, err) }()

	chunks, err := s.svc.ProcessFile(ctx, path)
	if err != nil {
		return nil, err //nolint:wrapcheck // ReadError is part of the public contract
	}
	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = chunkFromDomain(c)
	}
	return out, nil
}

// Texts is Process reduced to the plain chunk texts, in order.
func (s *ChunkService) Texts(ctx context.Context, path string) ([]string, error) {
	chunks, err := s.Process(ctx, path)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts, nil
}

// SearchService queries the web search provider.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Search returns the flattened results for query. It never fails: the disabled
// state, empty results and provider errors are reported as text.
func (s *SearchService) Search(ctx context.Context, query string) string {
	start := time.Now()
	out := s.svc.Search(ctx, query)
	s.obs.observe("search", start, nil)
	return out
}

// Results returns the structured results for query. It fails with ErrSearchDisabled,
// ErrInvalidInput for a blank query, or ErrSearchProviderError.
func (s *SearchService) Results(ctx context.Context, query string) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_results", start, err) }()

	results, err := s.svc.Results(ctx, query)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinels are part of the public contract
	}
	out := make([]SearchResult, len(results))
	for i := range results {
		out[i] = SearchResult{
			Title:   results[i].Title(),
			URL:     results[i].URL(),
			Content: results[i].Content(),
			Score:   results[i].Score(),
		}
	}
	return out, nil
}

// Enabled reports whether a usable Tavily API key is configured.
func (s *SearchService) Enabled() bool {
	return s.svc.Enabled()
}

func chunkFromDomain(c chunk.Chunk) Chunk {
	return Chunk{
		Kind:     ChunkKind(c.Kind()),
		Position: c.Position(),
		Source:   c.Source(),
		Text:     c.Text(),
	}
}
