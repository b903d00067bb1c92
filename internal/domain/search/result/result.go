package result

import (
	"math"
	"strconv"
	"strings"
)

// Result is a single web search hit.
type Result struct {
	title   string
	url     string
	content string
	score   float64
}

// New creates a search result.
func New(title, url, content string, score float64) Result {
	return Result{title: title, url: url, content: content, score: score}
}

// Title returns the page title.
func (r *Result) Title() string { return r.title }

// URL returns the page address.
func (r *Result) URL() string { return r.url }

// Content returns the snippet extracted by the provider.
func (r *Result) Content() string { return r.content }

// Score returns the provider relevance score.
func (r *Result) Score() float64 { return r.score }

// String renders the result as a single line; field order is fixed.
func (r *Result) String() string {
	var sb strings.Builder
	sb.WriteString("title: ")
	sb.WriteString(r.title)
	sb.WriteString(" - url: ")
	sb.WriteString(r.url)
	sb.WriteString(" - content: ")
	sb.WriteString(r.content)
	sb.WriteString(" - score: ")
	sb.WriteString(FormatScore(r.score))
	return sb.String()
}

// FormatScore renders a score as the shortest round-tripping decimal. Integral values
// keep a trailing ".0"; magnitudes below 1e-4 or from 1e16 use exponent form ("1e-05").
func FormatScore(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Join renders results one per line.
func Join(results []Result) string {
	lines := make([]string, len(results))
	for i := range results {
		lines[i] = results[i].String()
	}
	return strings.Join(lines, "\n")
}
