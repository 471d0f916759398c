package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/strataview/marketgraph/pkg/algorithms"
	"github.com/strataview/marketgraph/pkg/graph"
	"github.com/strataview/marketgraph/pkg/market"
	"github.com/strataview/marketgraph/pkg/validation"
)

// Algorithm parameter limits to prevent resource exhaustion
const (
	DefaultAnalysisTimeout = 60 * time.Second
	MaxAnalysisTimeout     = 5 * time.Minute

	MaxTrendSnapshots = 100
)

// analysisTimeout returns the configured per-request timeout.
func (s *Server) analysisTimeout() time.Duration {
	if s.config.AnalysisTimeoutSeconds > 0 {
		d := time.Duration(s.config.AnalysisTimeoutSeconds) * time.Second
		if d > MaxAnalysisTimeout {
			return MaxAnalysisTimeout
		}
		return d
	}
	return DefaultAnalysisTimeout
}

// buildGraph converts a validated wire graph into an engine value.
func buildGraph(payload *validation.GraphPayload) (*graph.Graph, error) {
	edges := make([]graph.Edge, 0, len(payload.Edges))
	for _, e := range payload.Edges {
		weight := 1.0
		if e.Weight != nil {
			weight = *e.Weight
		}
		edges = append(edges, graph.WeightedE(e.From, e.To, weight))
	}
	var opts []graph.Option
	if payload.Directed {
		opts = append(opts, graph.Directed())
	}
	return graph.New(payload.Nodes, edges, opts...)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req validation.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateAnalyzeRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := buildGraph(&req.Graph)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.analysisTimeout())
	defer cancel()

	start := time.Now()
	var results any
	communities, iterations := 0, 0

	switch req.Algorithm {
	case "louvain":
		cfg := algorithms.DefaultLouvainConfig()
		if err := louvainParams(&cfg, req.Parameters); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := algorithms.Louvain(ctx, g, cfg)
		if err != nil {
			s.recordAnalysisError(req.Algorithm, g, start)
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		results, communities, iterations = res, res.CommunityCount, res.Iterations

	case "girvan_newman":
		var cfg algorithms.GirvanNewmanConfig
		if v, ok := req.Parameters["target_communities"]; ok {
			t, ok := v.(float64)
			if !ok || t < 0 || t != float64(int(t)) {
				s.respondError(w, http.StatusBadRequest, "target_communities must be a non-negative integer")
				return
			}
			cfg.TargetCommunities = int(t)
		}
		res, err := algorithms.GirvanNewman(ctx, g, cfg)
		if err != nil {
			s.recordAnalysisError(req.Algorithm, g, start)
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		results, communities = res, res.CommunityCount

	case "label_propagation":
		cfg := algorithms.DefaultLabelPropagationConfig()
		if err := propagationParams(&cfg, req.Parameters); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := algorithms.LabelPropagation(ctx, g, cfg)
		if err != nil {
			s.recordAnalysisError(req.Algorithm, g, start)
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		results, communities, iterations = res, res.CommunityCount, res.Iterations

	case "hierarchical":
		cfg := algorithms.DefaultHierarchicalConfig()
		if err := hierarchicalParams(&cfg, req.Parameters); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := algorithms.HierarchicalClustering(ctx, g, cfg)
		if err != nil {
			s.recordAnalysisError(req.Algorithm, g, start)
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		results, communities = res, res.CommunityCount

	case "components":
		res := algorithms.ConnectedComponents(g)
		results, communities = res, res.CommunityCount

	case "similarity":
		metric, err := similarityParam(req.Parameters)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		matrix := algorithms.PairwiseSimilarity(g, metric)
		scores := make(map[string]float64, len(matrix))
		for pair, score := range matrix {
			scores[pair[0]+"|"+pair[1]] = score
		}
		results = map[string]any{"metric": metric.String(), "scores": scores}

	case "betweenness":
		betweenness := algorithms.EdgeBetweenness(g)
		scores := make(map[string]float64, len(betweenness))
		for pair, score := range betweenness {
			scores[pair[0]+"|"+pair[1]] = score
		}
		results = map[string]any{"edges": scores}

	default:
		s.respondError(w, http.StatusBadRequest, "Unknown algorithm (supported: louvain, girvan_newman, label_propagation, hierarchical, components, similarity, betweenness)")
		return
	}

	s.metrics.RecordAnalysis(req.Algorithm, "ok", time.Since(start), g.NodeCount(), g.EdgeCount(), communities, iterations)
	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		Algorithm: req.Algorithm,
		Results:   results,
		Time:      time.Since(start).String(),
	})
}

func (s *Server) recordAnalysisError(algorithm string, g *graph.Graph, start time.Time) {
	s.metrics.RecordAnalysis(algorithm, "error", time.Since(start), g.NodeCount(), g.EdgeCount(), 0, 0)
}

// handleMarket runs Louvain and derives a market-structure snapshot.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req validation.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Algorithm == "" {
		req.Algorithm = "louvain"
	}
	if err := validation.ValidateAnalyzeRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := buildGraph(&req.Graph)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.analysisTimeout())
	defer cancel()

	cfg := algorithms.DefaultLouvainConfig()
	if err := louvainParams(&cfg, req.Parameters); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	partition, err := algorithms.Louvain(ctx, g, cfg)
	if err != nil {
		s.recordAnalysisError("market", g, start)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot := market.AnalyzeStructure(g, partition)
	s.metrics.RecordAnalysis("market", "ok", time.Since(start), g.NodeCount(), g.EdgeCount(), partition.CommunityCount, partition.Iterations)
	s.respondJSON(w, http.StatusOK, snapshot)
}

// handleTrend tracks consolidation across a snapshot series.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req TrendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Snapshots) == 0 {
		s.respondError(w, http.StatusBadRequest, "snapshots must not be empty")
		return
	}
	if len(req.Snapshots) > MaxTrendSnapshots {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d snapshots allowed", MaxTrendSnapshots))
		return
	}

	snapshots := make([]market.GraphSnapshot, 0, len(req.Snapshots))
	for i, snap := range req.Snapshots {
		payload := snap.Graph
		if err := validation.ValidateGraphPayload(&payload); err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("snapshot %d: %v", i, err))
			return
		}
		g, err := buildGraph(&payload)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("snapshot %d: %v", i, err))
			return
		}
		snapshots = append(snapshots, market.GraphSnapshot{Timestamp: snap.Timestamp, Graph: g})
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.analysisTimeout())
	defer cancel()

	cfg := market.TrendConfig{}
	if req.Resolution > 0 {
		if err := validation.ValidateResolution(req.Resolution); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Louvain.Resolution = req.Resolution
	}

	start := time.Now()
	series, err := market.TrackConsolidation(ctx, snapshots, cfg)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RecordAnalysis("trend", "ok", time.Since(start), 0, 0, 0, 0)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"series": series,
		"time":   time.Since(start).String(),
	})
}

// Parameter extraction. JSON numbers decode as float64.

func louvainParams(cfg *algorithms.LouvainConfig, params map[string]any) error {
	if v, ok := params["iterations"]; ok {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("iterations must be a number")
		}
		if err := validation.ValidateIterations(int(f)); err != nil {
			return err
		}
		cfg.MaxIterations = int(f)
	}
	if v, ok := params["resolution"]; ok {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("resolution must be a number")
		}
		if err := validation.ValidateResolution(f); err != nil {
			return err
		}
		cfg.Resolution = f
	}
	return nil
}

func propagationParams(cfg *algorithms.LabelPropagationConfig, params map[string]any) error {
	if v, ok := params["iterations"]; ok {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("iterations must be a number")
		}
		if err := validation.ValidateIterations(int(f)); err != nil {
			return err
		}
		cfg.MaxIterations = int(f)
	}
	if v, ok := params["seed"]; ok {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("seed must be a number")
		}
		cfg.RandomSeed = int64(f)
	}
	return nil
}

func hierarchicalParams(cfg *algorithms.HierarchicalConfig, params map[string]any) error {
	if v, ok := params["metric"]; ok {
		metric, err := parseMetric(v)
		if err != nil {
			return err
		}
		cfg.Metric = metric
	}
	if v, ok := params["linkage"]; ok {
		name, ok := v.(string)
		if !ok {
			return fmt.Errorf("linkage must be a string")
		}
		switch name {
		case "single":
			cfg.Linkage = algorithms.LinkageSingle
		case "complete":
			cfg.Linkage = algorithms.LinkageComplete
		case "average":
			cfg.Linkage = algorithms.LinkageAverage
		default:
			return fmt.Errorf("linkage must be one of [single complete average]")
		}
	}
	if v, ok := params["cutoff"]; ok {
		f, ok := v.(float64)
		if !ok || f <= 0 || f > 1 {
			return fmt.Errorf("cutoff must be a number in (0, 1]")
		}
		cfg.SimilarityCutoff = f
	}
	return nil
}

func similarityParam(params map[string]any) (algorithms.SimilarityMetric, error) {
	if v, ok := params["metric"]; ok {
		return parseMetric(v)
	}
	return algorithms.SimilarityJaccard, nil
}

func parseMetric(v any) (algorithms.SimilarityMetric, error) {
	name, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("metric must be a string")
	}
	switch name {
	case "jaccard":
		return algorithms.SimilarityJaccard, nil
	case "cosine":
		return algorithms.SimilarityCosine, nil
	default:
		return 0, fmt.Errorf("metric must be one of [jaccard cosine]")
	}
}
