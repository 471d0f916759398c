package algorithms

import (
	"context"
	"testing"

	"github.com/strataview/marketgraph/pkg/graph"
)

// TestDetectors_TwoDisjointTriangles runs every detector on two disjoint
// triangles. Each one must converge on exactly the two triangles with
// clearly positive modularity; a greedy detector that keeps trading nodes
// between singleton neighbors would fragment this graph instead.
func TestDetectors_TwoDisjointTriangles(t *testing.T) {
	detectors := []struct {
		name string
		run  func(ctx context.Context, g *graph.Graph) (*CommunityResult, error)
	}{
		{"louvain", func(ctx context.Context, g *graph.Graph) (*CommunityResult, error) {
			return Louvain(ctx, g, DefaultLouvainConfig())
		}},
		{"girvan_newman", func(ctx context.Context, g *graph.Graph) (*CommunityResult, error) {
			return GirvanNewman(ctx, g, GirvanNewmanConfig{TargetCommunities: 2})
		}},
		{"label_propagation", func(ctx context.Context, g *graph.Graph) (*CommunityResult, error) {
			return LabelPropagation(ctx, g, LabelPropagationConfig{RandomSeed: 42})
		}},
		{"hierarchical", func(ctx context.Context, g *graph.Graph) (*CommunityResult, error) {
			return HierarchicalClustering(ctx, g, DefaultHierarchicalConfig())
		}},
	}

	for _, tc := range detectors {
		t.Run(tc.name, func(t *testing.T) {
			g := twoDisjointTriangles(t)

			res, err := tc.run(context.Background(), g)
			if err != nil {
				t.Fatalf("%s failed: %v", tc.name, err)
			}

			assertPartitionTotal(t, g, res)
			if res.CommunityCount != 2 {
				t.Fatalf("Expected exactly 2 communities, got %d", res.CommunityCount)
			}
			for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"d", "e"}, {"e", "f"}} {
				if !sameCommunity(res, pair[0], pair[1]) {
					t.Errorf("Expected %s and %s in the same community", pair[0], pair[1])
				}
			}
			if sameCommunity(res, "a", "d") {
				t.Errorf("Expected the two triangles in different communities")
			}
			if res.Modularity <= 0.3 {
				t.Errorf("Expected modularity > 0.3, got %f", res.Modularity)
			}
		})
	}
}

// TestLouvain_CliquesConverge checks that a node with multiple neighbors in
// its own community stays put rather than defecting to a singleton neighbor.
// Without the stay-put baseline the labels on clique graphs flip forever.
func TestLouvain_CliquesConverge(t *testing.T) {
	g := twoDisjointTriangles(t)

	res, err := Louvain(context.Background(), g, DefaultLouvainConfig())
	if err != nil {
		t.Fatalf("Louvain failed: %v", err)
	}

	if !res.Converged {
		t.Errorf("Expected convergence within %d iterations, ran %d",
			DefaultLouvainConfig().MaxIterations, res.Iterations)
	}
	if res.CommunityCount != 2 {
		t.Errorf("Expected 2 communities, got %d", res.CommunityCount)
	}
}
