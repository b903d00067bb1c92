package ragtools

// ChunkKind identifies which part of a data set a chunk describes.
type ChunkKind string

// Chunk kind constants.
const (
	ChunkHeader  ChunkKind = "header"
	ChunkRow     ChunkKind = "row"
	ChunkSummary ChunkKind = "summary"
)

// Chunk is a formatted text block ready for embedding.
type Chunk struct {
	Kind     ChunkKind
	Position int    // 0-based index in the emitted sequence
	Source   string // data set name (file stem)
	Text     string
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component → "ok"/"error"/"disabled"
}
