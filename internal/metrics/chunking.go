package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chunking Prometheus metrics.
var (
	ChunkingFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragtools",
			Name:      "chunking_files_total",
			Help:      "Total number of tabular files processed",
		},
		[]string{"format", "status"},
	)

	ChunkingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragtools",
			Name:      "chunking_duration_seconds",
			Help:      "Time to load and chunk a tabular file in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"format"},
	)

	ChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragtools",
			Name:      "chunks_total",
			Help:      "Total number of chunks emitted",
		},
		[]string{"kind"}, // header / row / summary
	)

	TableRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragtools",
			Name:      "table_rows",
			Help:      "Row count of loaded tables",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
)

var chunkingMetricsRegistered bool

// RegisterChunkingMetrics registers Prometheus chunking metrics. Must be called once from main.
func RegisterChunkingMetrics() {
	if chunkingMetricsRegistered {
		return
	}
	prometheus.MustRegister(ChunkingFilesTotal)
	prometheus.MustRegister(ChunkingDuration)
	prometheus.MustRegister(ChunksTotal)
	prometheus.MustRegister(TableRows)
	chunkingMetricsRegistered = true
}
