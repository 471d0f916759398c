package algorithms

import (
	"github.com/strataview/marketgraph/pkg/graph"
)

// Modularity computes Q = (1/2m) Σij [Aij − ki·kj/2m]·δ(ci,cj) over all node
// pairs, treating the graph as undirected. The direct pair loop is O(n²),
// which is fine for the moderate graph sizes this engine targets. Returns 0
// for graphs with no nodes or zero total edge weight.
func Modularity(g *graph.Graph, nodeCommunity map[string]int) float64 {
	m := g.TotalEdgeWeight()
	if g.NodeCount() == 0 || m == 0 {
		return 0
	}

	degrees := g.WeightedDegrees()

	// Symmetric pair weights; self-loop weight counted once as A(i,i).
	pairWeight := make(map[[2]string]float64)
	for _, e := range g.Edges() {
		pairWeight[[2]string{e.From, e.To}] += e.Weight
		if e.From != e.To {
			pairWeight[[2]string{e.To, e.From}] += e.Weight
		}
	}

	nodes := g.Nodes()
	twoM := 2 * m
	var q float64
	for _, i := range nodes {
		ci, ok := nodeCommunity[i]
		if !ok {
			continue
		}
		for _, j := range nodes {
			cj, ok := nodeCommunity[j]
			if !ok || ci != cj {
				continue
			}
			q += pairWeight[[2]string{i, j}] - degrees[i]*degrees[j]/twoM
		}
	}
	return q / twoM
}
