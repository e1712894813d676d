// Package metrics exposes Prometheus collectors for the retrieval
// pipeline. Collectors are registered at import time and served from the
// /metrics endpoint of the MCP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var documentsIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Number of documents that completed ingestion",
})

var chunksIndexed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_indexed_total",
	Help: "Number of chunks embedded and stored",
})

var chunksSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_skipped_total",
	Help: "Number of chunks dropped after embedding retries were exhausted",
})

var searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "searches_total",
	Help: "Number of similarity searches served",
})

var embedFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "embedding_failures_total",
	Help: "Number of embedding calls that failed after retries",
})

var embedDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "embedding_call_duration_seconds",
	Help:    "Latency of embedding provider calls, retries included",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
})

var searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "search_duration_seconds",
	Help:    "End-to-end latency of similarity searches",
	Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5},
})

func IncDocumentsIngested() { documentsIngested.Inc() }

func AddChunksIndexed(n int) { chunksIndexed.Add(float64(n)) }

func AddChunksSkipped(n int) { chunksSkipped.Add(float64(n)) }

func IncSearches() { searchesTotal.Inc() }

func IncEmbedFailures() { embedFailures.Inc() }

func ObserveEmbedDuration(d time.Duration) { embedDuration.Observe(d.Seconds()) }

func ObserveSearchDuration(d time.Duration) { searchDuration.Observe(d.Seconds()) }
