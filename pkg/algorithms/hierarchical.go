package algorithms

import (
	"context"
	"fmt"

	"github.com/strataview/marketgraph/pkg/graph"
)

// Linkage selects how cluster-to-cluster similarity is derived from member
// pair scores.
type Linkage int

const (
	LinkageSingle   Linkage = iota // max member pair similarity
	LinkageComplete                // min member pair similarity
	LinkageAverage                 // mean member pair similarity
)

// String returns the linkage's wire name.
func (l Linkage) String() string {
	switch l {
	case LinkageSingle:
		return "single"
	case LinkageComplete:
		return "complete"
	case LinkageAverage:
		return "average"
	default:
		return "unknown"
	}
}

// HierarchicalConfig configures the agglomerative detector.
type HierarchicalConfig struct {
	Metric  SimilarityMetric
	Linkage Linkage
	// SimilarityCutoff stops merging once the best remaining cluster pair
	// scores below it. 0 means the default of 0.1.
	SimilarityCutoff float64
}

// DefaultHierarchicalConfig returns the standard configuration.
func DefaultHierarchicalConfig() HierarchicalConfig {
	return HierarchicalConfig{
		Metric:           SimilarityJaccard,
		Linkage:          LinkageAverage,
		SimilarityCutoff: 0.1,
	}
}

// HierarchicalClustering detects communities agglomeratively over the
// pairwise similarity matrix: every node starts as a singleton cluster and
// the two most-similar clusters (per the configured linkage) merge until
// one cluster remains or the best remaining pair drops below the cutoff.
// Each merge is recorded in the dendrogram, naming each cluster by its
// first member. Ties go to the earliest cluster pair in input order. The
// only error is context cancellation, checked before each merge.
func HierarchicalClustering(ctx context.Context, g *graph.Graph, cfg HierarchicalConfig) (*CommunityResult, error) {
	if cfg.SimilarityCutoff <= 0 {
		cfg.SimilarityCutoff = 0.1
	}

	if g.NodeCount() == 0 {
		return emptyResult(), nil
	}

	matrix := PairwiseSimilarity(g, cfg.Metric)

	clusters := make([][]string, 0, g.NodeCount())
	for _, id := range g.Nodes() {
		clusters = append(clusters, []string{id})
	}

	var dendrogram []DendrogramEntry
	for len(clusters) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("hierarchical clustering with %d clusters: %w", len(clusters), err)
		}

		bestI, bestJ := -1, -1
		bestScore := -1.0
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				score := linkageScore(matrix, clusters[i], clusters[j], cfg.Linkage)
				if score > bestScore {
					bestScore = score
					bestI, bestJ = i, j
				}
			}
		}

		if bestScore < cfg.SimilarityCutoff {
			break
		}

		dendrogram = append(dendrogram, DendrogramEntry{
			MergedA:     clusters[bestI][0],
			MergedB:     clusters[bestJ][0],
			Score:       bestScore,
			Communities: len(clusters) - 1,
		})

		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}

	labels := make(map[string]int, g.NodeCount())
	for i, cluster := range clusters {
		for _, id := range cluster {
			labels[id] = i
		}
	}

	res := buildResult(g, labels)
	res.Modularity = Modularity(g, res.NodeCommunity)
	res.Converged = true
	res.Dendrogram = dendrogram
	return res, nil
}

// linkageScore folds member pair similarities into one cluster pair score.
func linkageScore(matrix SimilarityMatrix, a, b []string, linkage Linkage) float64 {
	switch linkage {
	case LinkageSingle:
		best := 0.0
		for _, x := range a {
			for _, y := range b {
				if s := matrix.At(x, y); s > best {
					best = s
				}
			}
		}
		return best
	case LinkageComplete:
		worst := 1.0
		for _, x := range a {
			for _, y := range b {
				if s := matrix.At(x, y); s < worst {
					worst = s
				}
			}
		}
		return worst
	default: // LinkageAverage
		var sum float64
		for _, x := range a {
			for _, y := range b {
				sum += matrix.At(x, y)
			}
		}
		return sum / float64(len(a)*len(b))
	}
}
