// Package algorithms implements the community detectors and the shared
// path, betweenness, and similarity engines that drive them. Every function
// is a pure computation over a graph.Graph: no state is shared between
// calls, so concurrent invocation from independent call sites is safe.
package algorithms

import (
	"github.com/strataview/marketgraph/pkg/graph"
)

// Community is one detected group of nodes.
type Community struct {
	ID    int      `json:"id"`
	Nodes []string `json:"nodes"`
	Size  int      `json:"size"`
}

// DendrogramEntry records one merge (agglomerative) or split (divisive)
// event in a clustering run.
type DendrogramEntry struct {
	// MergedA and MergedB name the two entities involved: cluster
	// representatives for merges, edge endpoints for splits.
	MergedA string `json:"a"`
	MergedB string `json:"b"`
	// Score is the linkage similarity for merges and the edge betweenness
	// for splits.
	Score float64 `json:"score"`
	// Communities is the community count after the event.
	Communities int `json:"communities"`
	// RemainingEdges is populated by the divisive algorithm only.
	RemainingEdges int `json:"remainingEdges,omitempty"`
}

// CommunityResult is the partition returned by every detector. Community ids
// are contiguous integers starting at 0, renumbered in first-seen order over
// the input node order. Every input node appears in NodeCommunity exactly
// once.
type CommunityResult struct {
	Communities    []*Community   `json:"communities"`
	NodeCommunity  map[string]int `json:"nodeCommunity"`
	CommunityCount int            `json:"communityCount"`
	Modularity     float64        `json:"modularity"`
	// Converged is false when an iterative detector hit its iteration cap
	// before stabilizing; the partition is still the best one found.
	Converged bool `json:"converged"`
	// Dendrogram is populated by the divisive and agglomerative detectors.
	Dendrogram []DendrogramEntry `json:"dendrogram,omitempty"`
	// Iterations is the number of full passes an iterative detector ran.
	Iterations int `json:"iterations,omitempty"`
}

// emptyResult is what every detector returns for a graph with no nodes.
func emptyResult() *CommunityResult {
	return &CommunityResult{
		Communities:   []*Community{},
		NodeCommunity: map[string]int{},
		Converged:     true,
	}
}

// buildResult renumbers raw labels to contiguous community ids (first-seen
// order over the graph's input node order) and assembles the result value.
func buildResult(g *graph.Graph, labels map[string]int) *CommunityResult {
	renumber := make(map[int]int)
	nodeCommunity := make(map[string]int, g.NodeCount())
	communities := make([]*Community, 0)

	for _, id := range g.Nodes() {
		label := labels[id]
		cid, seen := renumber[label]
		if !seen {
			cid = len(communities)
			renumber[label] = cid
			communities = append(communities, &Community{ID: cid})
		}
		nodeCommunity[id] = cid
		communities[cid].Nodes = append(communities[cid].Nodes, id)
	}
	for _, c := range communities {
		c.Size = len(c.Nodes)
	}

	return &CommunityResult{
		Communities:    communities,
		NodeCommunity:  nodeCommunity,
		CommunityCount: len(communities),
	}
}
