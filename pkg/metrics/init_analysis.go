package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketgraph_analyses_total",
			Help: "Total number of analysis runs",
		},
		[]string{"algorithm", "status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketgraph_analysis_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"algorithm"},
	)

	r.AnalysisIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketgraph_analysis_iterations",
			Help:    "Passes run by iterative detectors before stopping",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"algorithm"},
	)

	r.GraphNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketgraph_graph_nodes",
			Help:    "Node count of analyzed graphs",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketgraph_graph_edges",
			Help:    "Edge count of analyzed graphs",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
	)

	r.CommunitiesFound = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketgraph_communities_found",
			Help:    "Communities in returned partitions",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"algorithm"},
	)
}
