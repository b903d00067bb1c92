package chunk

// Kind identifies which part of a data set a chunk describes.
type Kind string

const (
	// KindHeader describes the data set as a whole (columns, samples).
	KindHeader Kind = "header"
	// KindRow holds a single record.
	KindRow Kind = "row"
	// KindSummary holds aggregate statistics.
	KindSummary Kind = "summary"
)

// Chunk is a formatted text block ready for embedding.
type Chunk struct {
	kind     Kind
	position int
	source   string
	text     string
}

// New creates a chunk. position is the 0-based index in the emitted sequence.
func New(kind Kind, position int, source, text string) Chunk {
	return Chunk{kind: kind, position: position, source: source, text: text}
}

// Kind returns the chunk kind.
func (c Chunk) Kind() Kind { return c.kind }

// Position returns the 0-based index of the chunk within its sequence.
func (c Chunk) Position() int { return c.position }

// Source returns the data set name the chunk was built from.
func (c Chunk) Source() string { return c.source }

// Text returns the formatted block.
func (c Chunk) Text() string { return c.text }

// Texts returns the plain text of every chunk, preserving order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.text
	}
	return out
}
