package algorithms

import (
	"github.com/strataview/marketgraph/pkg/graph"
)

// canonicalPair orders two node ids so undirected edges have a single map
// key.
func canonicalPair(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// EdgeBetweenness computes betweenness for every edge of the graph's
// symmetric view: the number of all-pairs shortest paths crossing the edge,
// where each pair contributes 1/σ per equal-length shortest path (σ being
// the pair's shortest-path count). Keys are canonical (min, max) node-id
// pairs. Self-loops carry no shortest paths and are omitted.
//
// Each Brandes source pass is O(V+E) of BFS plus an explicit-stack
// back-propagation, so the full computation is O(V·E); recomputed inside the
// divisive detector after every removal it dominates that algorithm's cost.
func EdgeBetweenness(g *graph.Graph) map[[2]string]float64 {
	nodes := g.Nodes()
	neighbors := make(map[string][]string, len(nodes))
	for id, adj := range g.SymmetricAdjacency() {
		for _, nb := range adj {
			if nb.ID == id {
				continue
			}
			neighbors[id] = append(neighbors[id], nb.ID)
		}
	}
	return edgeBetweennessOver(nodes, neighbors)
}

// edgeBetweennessOver runs the accumulation over an explicit undirected
// adjacency, so the divisive detector can reuse it on its shrinking working
// edge set without rebuilding graph values.
func edgeBetweennessOver(nodes []string, neighbors map[string][]string) map[[2]string]float64 {
	betweenness := make(map[[2]string]float64)

	for _, source := range nodes {
		// BFS phase: shortest-path counts (sigma) and predecessor lists
		stack := make([]string, 0, len(nodes))
		pred := make(map[string][]string, len(nodes))
		sigma := make(map[string]float64, len(nodes))
		dist := make(map[string]int, len(nodes))
		for _, id := range nodes {
			dist[id] = -1
		}
		sigma[source] = 1
		dist[source] = 0

		queue := []string{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, w := range neighbors[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		// Back-propagation over the visit stack, crediting each traversed
		// edge with its share of the pair's shortest paths. The explicit
		// stack keeps this safe on deep graphs.
		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				contribution := (sigma[v] / sigma[w]) * (1 + delta[w])
				delta[v] += contribution
				betweenness[canonicalPair(v, w)] += contribution
			}
		}
	}

	// every unordered pair was counted from both endpoints
	for key := range betweenness {
		betweenness[key] /= 2
	}
	return betweenness
}
