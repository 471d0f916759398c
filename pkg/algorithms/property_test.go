package algorithms

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/strataview/marketgraph/pkg/graph"
)

// randomGraph builds a reproducible random graph with n nodes and roughly
// 2n edges drawn from the given seed.
func randomGraph(n int, seed int64) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))

	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("n%d", i)
	}

	var edges []graph.Edge
	if n > 1 {
		for i := 0; i < 2*n; i++ {
			from := nodes[rng.Intn(n)]
			to := nodes[rng.Intn(n)]
			weight := 0.5 + rng.Float64()
			edges = append(edges, graph.WeightedE(from, to, weight))
		}
	}

	g, err := graph.New(nodes, edges)
	if err != nil {
		panic(err)
	}
	return g
}

// partitionWellFormed checks the invariants every detector must honor:
// total assignment, contiguous ids, consistent sizes.
func partitionWellFormed(g *graph.Graph, res *CommunityResult) bool {
	if len(res.NodeCommunity) != g.NodeCount() {
		return false
	}
	seen := make(map[int]bool)
	for _, id := range g.Nodes() {
		cid, ok := res.NodeCommunity[id]
		if !ok || cid < 0 || cid >= res.CommunityCount {
			return false
		}
		seen[cid] = true
	}
	if len(seen) != res.CommunityCount || len(res.Communities) != res.CommunityCount {
		return false
	}
	total := 0
	for i, c := range res.Communities {
		if c.ID != i || c.Size != len(c.Nodes) {
			return false
		}
		total += c.Size
	}
	return total == g.NodeCount()
}

// TestDetectorInvariants verifies partition invariants across every
// detector on random graphs
func TestDetectorInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)
	ctx := context.Background()

	properties.Property("louvain partitions are well-formed with bounded modularity", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			res, err := Louvain(ctx, g, DefaultLouvainConfig())
			if err != nil {
				return false
			}
			return partitionWellFormed(g, res) && res.Modularity >= -1 && res.Modularity <= 1
		},
		gen.IntRange(0, 15),
		gen.Int64(),
	))

	properties.Property("louvain is deterministic", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			first, err1 := Louvain(ctx, g, DefaultLouvainConfig())
			second, err2 := Louvain(ctx, g, DefaultLouvainConfig())
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(first.NodeCommunity, second.NodeCommunity)
		},
		gen.IntRange(0, 15),
		gen.Int64(),
	))

	properties.Property("label propagation partitions are well-formed", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			res, err := LabelPropagation(ctx, g, LabelPropagationConfig{RandomSeed: seed | 1})
			if err != nil {
				return false
			}
			return partitionWellFormed(g, res)
		},
		gen.IntRange(0, 15),
		gen.Int64(),
	))

	properties.Property("connected components partitions are well-formed", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			return partitionWellFormed(g, ConnectedComponents(g))
		},
		gen.IntRange(0, 15),
		gen.Int64(),
	))

	properties.Property("hierarchical partitions are well-formed", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			res, err := HierarchicalClustering(ctx, g, DefaultHierarchicalConfig())
			if err != nil {
				return false
			}
			return partitionWellFormed(g, res)
		},
		gen.IntRange(0, 12),
		gen.Int64(),
	))

	properties.Property("girvan-newman partitions are well-formed", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			res, err := GirvanNewman(ctx, g, GirvanNewmanConfig{TargetCommunities: 2})
			if err != nil {
				return false
			}
			return partitionWellFormed(g, res)
		},
		gen.IntRange(0, 10),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestSimilarityProperties verifies similarity score bounds and symmetry on
// random graphs
func TestSimilarityProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("pairwise similarity is symmetric and in [0,1]", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			matrix := PairwiseSimilarity(g, SimilarityJaccard)
			for _, a := range g.Nodes() {
				for _, b := range g.Nodes() {
					score := matrix.At(a, b)
					if score < 0 || score > 1 || score != matrix.At(b, a) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 15),
		gen.Int64(),
	))

	properties.Property("cosine never falls below jaccard", prop.ForAll(
		func(n int, seed int64) bool {
			g := randomGraph(n, seed)
			nodes := g.Nodes()
			for _, a := range nodes {
				for _, b := range nodes {
					if a == b {
						continue
					}
					jaccard := NodeSimilarity(g, a, b, SimilarityJaccard)
					cosine := NodeSimilarity(g, a, b, SimilarityCosine)
					if cosine < jaccard-1e-9 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 12),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
