package algorithms

import (
	"container/list"

	"github.com/strataview/marketgraph/pkg/graph"
)

// ConnectedComponents partitions the graph into its connected components
// over the symmetric edge view, via BFS with an explicit visited set.
// Isolated nodes each form their own component.
func ConnectedComponents(g *graph.Graph) *CommunityResult {
	if g.NodeCount() == 0 {
		return emptyResult()
	}

	neighbors := make(map[string][]string, g.NodeCount())
	for id, adj := range g.SymmetricAdjacency() {
		for _, nb := range adj {
			if nb.ID == id {
				continue
			}
			neighbors[id] = append(neighbors[id], nb.ID)
		}
	}

	labels := componentsOver(g.Nodes(), neighbors)
	res := buildResult(g, labels)
	res.Modularity = Modularity(g, res.NodeCommunity)
	res.Converged = true
	return res
}

// componentsOver labels connected components of an explicit undirected
// adjacency. Labels are component indexes in discovery order; the divisive
// detector reuses this on its shrinking working edge set.
func componentsOver(nodes []string, neighbors map[string][]string) map[string]int {
	visited := make(map[string]bool, len(nodes))
	labels := make(map[string]int, len(nodes))
	component := 0

	for _, start := range nodes {
		if visited[start] {
			continue
		}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			id, ok := queue.Remove(queue.Front()).(string)
			if !ok {
				continue
			}
			labels[id] = component

			for _, nb := range neighbors[id] {
				if !visited[nb] {
					visited[nb] = true
					queue.PushBack(nb)
				}
			}
		}
		component++
	}

	return labels
}
