package algorithms

import (
	"testing"

	"github.com/strataview/marketgraph/pkg/graph"
)

// testGraph builds an undirected graph with implicit node registration so
// tests can declare edges alone.
func testGraph(t *testing.T, edges ...graph.Edge) *graph.Graph {
	t.Helper()
	g, err := graph.New(nil, edges, graph.AllowImplicitNodes())
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}
	return g
}

// twoTrianglesWithBridge builds the classic two-community graph: triangles
// a-b-c and d-e-f joined by the single bridge c-d.
func twoTrianglesWithBridge(t *testing.T) *graph.Graph {
	t.Helper()
	return testGraph(t,
		graph.E("a", "b"), graph.E("b", "c"), graph.E("a", "c"),
		graph.E("d", "e"), graph.E("e", "f"), graph.E("d", "f"),
		graph.E("c", "d"),
	)
}

// twoDisjointTriangles builds triangles a-b-c and d-e-f with no bridge.
func twoDisjointTriangles(t *testing.T) *graph.Graph {
	t.Helper()
	return testGraph(t,
		graph.E("a", "b"), graph.E("b", "c"), graph.E("a", "c"),
		graph.E("d", "e"), graph.E("e", "f"), graph.E("d", "f"),
	)
}

// assertPartitionTotal checks that every node is assigned exactly one
// contiguous community id starting at 0 and that community sizes add up.
func assertPartitionTotal(t *testing.T, g *graph.Graph, res *CommunityResult) {
	t.Helper()

	if len(res.NodeCommunity) != g.NodeCount() {
		t.Errorf("Expected %d node assignments, got %d", g.NodeCount(), len(res.NodeCommunity))
	}
	for _, id := range g.Nodes() {
		cid, ok := res.NodeCommunity[id]
		if !ok {
			t.Errorf("Node %q has no community assignment", id)
			continue
		}
		if cid < 0 || cid >= res.CommunityCount {
			t.Errorf("Node %q has out-of-range community id %d", id, cid)
		}
	}

	if len(res.Communities) != res.CommunityCount {
		t.Errorf("CommunityCount %d does not match %d communities", res.CommunityCount, len(res.Communities))
	}
	total := 0
	for i, c := range res.Communities {
		if c.ID != i {
			t.Errorf("Expected contiguous community id %d, got %d", i, c.ID)
		}
		if c.Size != len(c.Nodes) {
			t.Errorf("Community %d size %d does not match %d members", c.ID, c.Size, len(c.Nodes))
		}
		total += c.Size
	}
	if total != g.NodeCount() {
		t.Errorf("Community sizes sum to %d, expected %d", total, g.NodeCount())
	}
}

// sameCommunity reports whether two nodes share a community.
func sameCommunity(res *CommunityResult, a, b string) bool {
	return res.NodeCommunity[a] == res.NodeCommunity[b]
}
