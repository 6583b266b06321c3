// Package telemetry holds the Prometheus instrumentation for one analysis
// run: phase durations, debt items emitted by kind, and call-graph size.
// Collectors are registered against a private registry by default so that
// running the analyzer as a library (tests, multiple Run calls) never
// collides with prometheus.DefaultRegisterer.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles the metrics the orchestrator updates during Run.
type Collectors struct {
	registry *prometheus.Registry

	PhaseDuration    *prometheus.HistogramVec
	DebtItemsByKind  *prometheus.CounterVec
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	UnresolvedCalls  prometheus.Counter
}

var phaseDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

// NewPrivate returns a Collectors registered against a fresh, unshared
// registry. Safe to construct once per Orchestrator or once per test.
func NewPrivate() *Collectors {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		registry: reg,
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "debtmap_phase_duration_seconds",
			Help:    "Duration of each orchestrator phase.",
			Buckets: phaseDurationBuckets,
		}, []string{"phase"}),
		DebtItemsByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debtmap_debt_items_total",
			Help: "Debt items emitted, by kind.",
		}, []string{"kind"}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "debtmap_callgraph_nodes",
			Help: "Function nodes in the resolved call graph.",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "debtmap_callgraph_edges",
			Help: "Call edges in the resolved call graph.",
		}),
		UnresolvedCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "debtmap_unresolved_calls_total",
			Help: "Call sites that failed all three resolution tiers.",
		}),
	}
	reg.MustRegister(c.PhaseDuration, c.DebtItemsByKind, c.GraphNodes, c.GraphEdges, c.UnresolvedCalls)
	return c
}

// Handler returns an http.Handler serving this instance's registry in the
// Prometheus exposition format, for the CLI's optional --metrics-addr.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
