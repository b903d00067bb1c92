package ragtools

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	tavilyKey     string
	tavilyBaseURL string
	searchDepth   string
	maxResults    int
	timeout       time.Duration
	httpClient    *http.Client

	naValues          []string
	sheet             string
	maxSamples        int
	maxUniqueValues   int
	medicineKeywords  []string
	conditionKeywords []string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithTavily enables web search with the given Tavily API key.
// A blank key or the sample placeholder leaves search disabled.
func WithTavily(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tavilyKey = apiKey
	})
}

// WithTavilyBaseURL overrides the Tavily API endpoint (proxies, tests).
func WithTavilyBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tavilyBaseURL = url
	})
}

// WithSearchDepth sets the Tavily search depth: "basic" (default) or "advanced".
func WithSearchDepth(depth string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchDepth = depth
	})
}

// WithMaxResults sets the number of search results requested and rendered.
// Default: 5.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithTimeout bounds a single search request. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient sets the HTTP client used for search requests. Overrides WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithNAValues adds cell texts treated as missing, on top of the built-in set
// ("", "NA", "N/A", "NaN", "null", ...).
func WithNAValues(values ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.naValues = append(c.naValues, values...)
	})
}

// WithSheet selects the worksheet read from xlsx files. Default: the first sheet.
func WithSheet(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sheet = name
	})
}

// WithSampleLimits sets how many sample values the header chunk lists per column (default 3)
// and the largest distinct-value count the summary lists verbatim (default 20).
func WithSampleLimits(maxSamples, maxUniqueValues int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxSamples = maxSamples
		c.maxUniqueValues = maxUniqueValues
	})
}

// WithKeywords overrides the column-name keywords that mark medicine and condition
// columns in the summary chunk. A nil slice keeps the default set.
func WithKeywords(medicine, condition []string) Option {
	return optionFunc(func(c *clientConfig) {
		c.medicineKeywords = medicine
		c.conditionKeywords = condition
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
