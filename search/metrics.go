package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the search core.
type Metrics struct {
	Registry          *prometheus.Registry
	SearchesTotal     *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	FailuresTotal     *prometheus.CounterVec
	DocumentsTotal    prometheus.Counter
	EntitiesTotal     *prometheus.CounterVec
	CacheLookupsTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosearch_searches_total",
			Help: "Total provider searches issued, by intent.",
		},
		[]string{"intent"},
	)
	searchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autosearch_search_duration_seconds",
			Help:    "Provider request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosearch_failures_total",
			Help: "Total retrieval failures by kind.",
		},
		[]string{"kind"},
	)
	documents := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autosearch_documents_total",
			Help: "Total documents retrieved and scored.",
		},
	)
	entities := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosearch_entities_total",
			Help: "Total entities extracted above the confidence threshold, by type.",
		},
		[]string{"type"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autosearch_cache_lookups_total",
			Help: "Result cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(searches, searchDuration, failures, documents, entities, cacheLookups)

	return &Metrics{
		Registry:          registry,
		SearchesTotal:     searches,
		SearchDuration:    searchDuration,
		FailuresTotal:     failures,
		DocumentsTotal:    documents,
		EntitiesTotal:     entities,
		CacheLookupsTotal: cacheLookups,
	}
}

// IncSearch increments the searches counter for an intent.
func (m *Metrics) IncSearch(intent string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(intent).Inc()
}

// ObserveDuration records a provider request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(d.Seconds())
}

// IncFailure increments the failures counter for a kind label.
func (m *Metrics) IncFailure(kind string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

// AddDocuments adds to the retrieved documents counter.
func (m *Metrics) AddDocuments(n int) {
	if m == nil {
		return
	}
	m.DocumentsTotal.Add(float64(n))
}

// IncEntities adds to the extracted entities counter for a type label.
func (m *Metrics) IncEntities(entityType string, n int) {
	if m == nil {
		return
	}
	m.EntitiesTotal.WithLabelValues(entityType).Add(float64(n))
}

// IncCacheLookup increments the cache lookup counter for an outcome.
func (m *Metrics) IncCacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(outcome).Inc()
}
