// Package api exposes the analysis engine over HTTP. The engine itself is
// stateless, so every request carries its graph inline.
package api

import (
	"time"

	"github.com/strataview/marketgraph/pkg/logging"
	"github.com/strataview/marketgraph/pkg/metrics"
	"github.com/strataview/marketgraph/pkg/validation"
)

// Server is the HTTP API server.
type Server struct {
	config    Config
	logger    logging.Logger
	metrics   *metrics.Registry
	startTime time.Time
	version   string
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalyzeResponse wraps one detector run.
type AnalyzeResponse struct {
	Algorithm string `json:"algorithm"`
	Results   any    `json:"results"`
	Time      string `json:"time"`
}

// TrendRequest asks for consolidation tracking over a snapshot series.
type TrendRequest struct {
	Snapshots []TrendSnapshotPayload `json:"snapshots"`
	// Resolution tunes the Louvain run on each snapshot; 0 means 1.0.
	Resolution float64 `json:"resolution,omitempty"`
}

// TrendSnapshotPayload pairs a timestamp label with its graph.
type TrendSnapshotPayload struct {
	Timestamp string       `json:"timestamp"`
	Graph     GraphPayload `json:"graph"`
}

// GraphPayload aliases the validated wire graph so handlers and clients
// share one shape.
type GraphPayload = validation.GraphPayload
