package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncHTTPRequestsInFlight marks one more request in flight.
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks one request finished.
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordAnalysis records one analysis run: its outcome, duration, input
// size, and partition shape.
func (r *Registry) RecordAnalysis(algorithm, status string, duration time.Duration, nodes, edges, communities, iterations int) {
	r.AnalysesTotal.WithLabelValues(algorithm, status).Inc()
	r.AnalysisDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	r.GraphNodes.Observe(float64(nodes))
	r.GraphEdges.Observe(float64(edges))
	if status == "ok" {
		r.CommunitiesFound.WithLabelValues(algorithm).Observe(float64(communities))
		if iterations > 0 {
			r.AnalysisIterations.WithLabelValues(algorithm).Observe(float64(iterations))
		}
	}
}
