package chunking

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/chunk"
	"github.com/kailas-cloud/ragtools/internal/domain/table"
	"github.com/kailas-cloud/ragtools/internal/metrics"
)

const (
	// DefaultMaxSamples is the number of sample values listed per column in the header chunk.
	DefaultMaxSamples = 3
	// DefaultMaxUniqueValues is the largest distinct-value count listed verbatim in the summary.
	DefaultMaxUniqueValues = 20
)

var (
	// DefaultMedicineKeywords select the columns whose distinct values are summarized.
	DefaultMedicineKeywords = []string{"medicine", "drug", "medication", "treatment"}
	// DefaultConditionKeywords select the columns listed as condition columns.
	DefaultConditionKeywords = []string{"symptom", "condition", "disease", "diagnosis"}
)

// Service converts tabular files into ordered text chunks.
type Service struct {
	reader     TableReader
	logger     *zap.Logger
	maxSamples int
	maxUnique  int
	medicine   []string
	condition  []string
}

// New creates a chunking service.
func New(reader TableReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reader:     reader,
		logger:     logger,
		maxSamples: DefaultMaxSamples,
		maxUnique:  DefaultMaxUniqueValues,
		medicine:   DefaultMedicineKeywords,
		condition:  DefaultConditionKeywords,
	}
}

// WithLimits overrides the sample count and the distinct-value threshold. Non-positive values keep the defaults.
func (s *Service) WithLimits(maxSamples, maxUnique int) *Service {
	if maxSamples > 0 {
		s.maxSamples = maxSamples
	}
	if maxUnique > 0 {
		s.maxUnique = maxUnique
	}
	return s
}

// WithKeywords overrides the column keyword sets. Empty sets keep the defaults.
func (s *Service) WithKeywords(medicine, condition []string) *Service {
	if len(medicine) > 0 {
		s.medicine = medicine
	}
	if len(condition) > 0 {
		s.condition = condition
	}
	return s
}

// LoadTable reads the file at path. Any failure is a *domain.ReadError.
func (s *Service) LoadTable(ctx context.Context, path string) (*table.Table, error) {
	t, err := s.reader.Read(ctx, path)
	if err != nil {
		return nil, domain.NewReadError(path, err)
	}
	if t == nil {
		return nil, domain.NewReadError(path, domain.ErrEmptySource)
	}
	return t, nil
}

// HeaderChunk describes the data set: source, size, columns and sample values.
func (s *Service) HeaderChunk(t *table.Table) chunk.Chunk {
	return chunk.New(chunk.KindHeader, 0, t.Name(), formatHeader(t, s.maxSamples))
}

// RowChunk formats a single record. name is the data set name shown in the title.
func (s *Service) RowChunk(row table.Row, name string) chunk.Chunk {
	return chunk.New(chunk.KindRow, row.Index()+1, name, formatRow(row, name))
}

// SummaryChunk reports record totals and keyword-matched column statistics.
func (s *Service) SummaryChunk(t *table.Table) chunk.Chunk {
	text := formatSummary(t, s.medicine, s.condition, s.maxUnique)
	return chunk.New(chunk.KindSummary, t.RowCount()+1, t.Name(), text)
}

// ProcessFile loads path and returns the header chunk, one chunk per row and the
// summary chunk, in that order.
func (s *Service) ProcessFile(ctx context.Context, path string) ([]chunk.Chunk, error) {
	format := formatLabel(path)
	start := time.Now()

	t, err := s.LoadTable(ctx, path)
	if err != nil {
		metrics.ChunkingFilesTotal.WithLabelValues(format, "error").Inc()
		s.logger.Error("Failed to load table",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	chunks := make([]chunk.Chunk, 0, t.RowCount()+2)
	chunks = append(chunks, s.HeaderChunk(t))
	name := t.Name()
	for i := 0; i < t.RowCount(); i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				metrics.ChunkingFilesTotal.WithLabelValues(format, "error").Inc()
				return nil, fmt.Errorf("chunk rows: %w", err)
			}
		}
		chunks = append(chunks, s.RowChunk(t.Row(i), name))
	}
	chunks = append(chunks, s.SummaryChunk(t))

	duration := time.Since(start)
	metrics.ChunkingFilesTotal.WithLabelValues(format, "success").Inc()
	metrics.ChunkingDuration.WithLabelValues(format).Observe(duration.Seconds())
	metrics.TableRows.Observe(float64(t.RowCount()))
	metrics.ChunksTotal.WithLabelValues(string(chunk.KindHeader)).Inc()
	metrics.ChunksTotal.WithLabelValues(string(chunk.KindRow)).Add(float64(t.RowCount()))
	metrics.ChunksTotal.WithLabelValues(string(chunk.KindSummary)).Inc()

	s.logger.Info("Table chunked",
		zap.String("path", path),
		zap.Int("rows", t.RowCount()),
		zap.Int("columns", len(t.Columns())),
		zap.Int("chunks", len(chunks)),
		zap.Duration("duration", duration),
	)
	return chunks, nil
}

const ctxCheckEvery = 4096

func formatLabel(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "unknown"
	}
	return ext
}
