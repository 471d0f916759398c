package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strataview/marketgraph/pkg/logging"
	"github.com/strataview/marketgraph/pkg/metrics"
)

// NewServer creates an API server. A nil logger logs JSON to stdout; a nil
// registry uses the process-wide default.
func NewServer(cfg Config, logger logging.Logger, registry *metrics.Registry) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}
	return &Server{
		config:    cfg,
		logger:    logger.With(logging.Component("api")),
		metrics:   registry,
		startTime: time.Now(),
		version:   "1.0.0",
	}
}

// Handler builds the full middleware-wrapped route mux. Split from Start so
// tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/analyze/market", s.handleMarket)
	mux.HandleFunc("/analyze/trend", s.handleTrend)

	return s.requestIDMiddleware(s.loggingMiddleware(s.metricsMiddleware(s.corsMiddleware(s.recoveryMiddleware(mux)))))
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info("starting analysis API server",
		logging.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
