// Package metrics provides Prometheus metrics for the workroom engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine. A nil *Metrics is a
// valid no-op receiver so stores can run uninstrumented in tests.
type Metrics struct {
	MutationsTotal       *prometheus.CounterVec
	SnapshotWritesTotal  *prometheus.CounterVec
	SearchesTotal        prometheus.Counter
	NarrationTokensTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workroom_mutations_total",
				Help: "Total number of workspace mutations by operation.",
			},
			[]string{"op"},
		),
		SnapshotWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workroom_snapshot_writes_total",
				Help: "Total number of whole-collection snapshot writes by collection.",
			},
			[]string{"collection"},
		),
		SearchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workroom_searches_total",
				Help: "Total number of search queries evaluated.",
			},
		),
		NarrationTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workroom_narration_tokens_total",
				Help: "Total narration tokens by direction (input/output).",
			},
			[]string{"direction"},
		),
		registry: reg,
	}

	reg.MustRegister(m.MutationsTotal)
	reg.MustRegister(m.SnapshotWritesTotal)
	reg.MustRegister(m.SearchesTotal)
	reg.MustRegister(m.NarrationTokensTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMutation increments the mutation counter for one operation.
func (m *Metrics) RecordMutation(op string) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(op).Inc()
}

// RecordSnapshotWrite increments the snapshot write counter for a collection.
func (m *Metrics) RecordSnapshotWrite(collection string) {
	if m == nil {
		return
	}
	m.SnapshotWritesTotal.WithLabelValues(collection).Inc()
}

// RecordSearch increments the search counter.
func (m *Metrics) RecordSearch() {
	if m == nil {
		return
	}
	m.SearchesTotal.Inc()
}

// RecordNarrationTokens adds token usage for one narration exchange.
func (m *Metrics) RecordNarrationTokens(input, output int64) {
	if m == nil {
		return
	}
	m.NarrationTokensTotal.WithLabelValues("input").Add(float64(input))
	m.NarrationTokensTotal.WithLabelValues("output").Add(float64(output))
}
