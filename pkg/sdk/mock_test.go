package ragtools

import (
	"context"

	"github.com/kailas-cloud/ragtools/internal/domain/chunk"
	"github.com/kailas-cloud/ragtools/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/ragtools/internal/usecase/health"
)

// --- chunkUseCase mock ---

type mockChunkUC struct {
	processFn func(ctx context.Context, path string) ([]chunk.Chunk, error)
}

func (m *mockChunkUC) ProcessFile(ctx context.Context, path string) ([]chunk.Chunk, error) {
	return m.processFn(ctx, path)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	result  string
	results []result.Result
	err     error
	enabled bool
	queries []string
}

func (m *mockSearchUC) Search(_ context.Context, query string) string {
	m.queries = append(m.queries, query)
	return m.result
}

func (m *mockSearchUC) Results(_ context.Context, query string) ([]result.Result, error) {
	m.queries = append(m.queries, query)
	return m.results, m.err
}

func (m *mockSearchUC) Enabled() bool { return m.enabled }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
