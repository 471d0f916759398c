package algorithms

import (
	"context"
	"fmt"

	"github.com/strataview/marketgraph/pkg/graph"
)

// GirvanNewmanConfig configures the divisive detector.
type GirvanNewmanConfig struct {
	// TargetCommunities stops the loop once the component count reaches
	// this value. 0 removes edges until none remain.
	TargetCommunities int
}

// GirvanNewman detects communities divisively: it repeatedly computes edge
// betweenness over the remaining edges, removes the single highest-scoring
// edge (ties broken by first-encountered order in the input edge list), and
// recomputes connected components, recording each removal in the dendrogram.
//
// Betweenness is recomputed from scratch after every removal, so each
// iteration costs a full O(V·E) pass; this detector is suited to
// small-to-medium graphs only. The only error is context cancellation,
// checked before each removal.
func GirvanNewman(ctx context.Context, g *graph.Graph, cfg GirvanNewmanConfig) (*CommunityResult, error) {
	if g.NodeCount() == 0 {
		return emptyResult(), nil
	}

	nodes := g.Nodes()

	// working set: unique undirected edges in first-encountered order
	type workingEdge struct {
		a, b string
	}
	seen := make(map[[2]string]bool)
	var working []workingEdge
	for _, e := range g.Edges() {
		if e.From == e.To {
			continue
		}
		key := canonicalPair(e.From, e.To)
		if seen[key] {
			continue
		}
		seen[key] = true
		working = append(working, workingEdge{a: e.From, b: e.To})
	}

	buildNeighbors := func() map[string][]string {
		neighbors := make(map[string][]string, len(nodes))
		for _, we := range working {
			neighbors[we.a] = append(neighbors[we.a], we.b)
			neighbors[we.b] = append(neighbors[we.b], we.a)
		}
		return neighbors
	}

	labels := componentsOver(nodes, buildNeighbors())
	componentCount := countDistinct(labels)
	var dendrogram []DendrogramEntry

	for len(working) > 0 && (cfg.TargetCommunities == 0 || componentCount < cfg.TargetCommunities) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("girvan-newman with %d edges remaining: %w", len(working), err)
		}

		betweenness := edgeBetweennessOver(nodes, buildNeighbors())

		best := -1
		bestScore := -1.0
		for i, we := range working {
			score := betweenness[canonicalPair(we.a, we.b)]
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		removed := working[best]
		working = append(working[:best], working[best+1:]...)

		labels = componentsOver(nodes, buildNeighbors())
		componentCount = countDistinct(labels)

		dendrogram = append(dendrogram, DendrogramEntry{
			MergedA:        removed.a,
			MergedB:        removed.b,
			Score:          bestScore,
			Communities:    componentCount,
			RemainingEdges: len(working),
		})
	}

	res := buildResult(g, labels)
	res.Modularity = Modularity(g, res.NodeCommunity)
	res.Converged = true
	res.Dendrogram = dendrogram
	return res, nil
}

func countDistinct(labels map[string]int) int {
	distinct := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	return len(distinct)
}
