package graph

// Neighbor is a weighted adjacency entry. Parallel edges between the same
// pair collapse into a single entry with summed weight.
type Neighbor struct {
	ID     string
	Weight float64
}

// Adjacency builds the adjacency map honoring the graph's direction flag:
// undirected graphs get symmetric entries, directed graphs only populate the
// source's out-adjacency. Every node, including isolated ones, has an entry.
func (g *Graph) Adjacency() map[string][]Neighbor {
	return g.buildAdjacency(!g.directed)
}

// SymmetricAdjacency builds the adjacency map treating every edge as
// undirected regardless of the direction flag. Community detection and
// betweenness operate on this view.
func (g *Graph) SymmetricAdjacency() map[string][]Neighbor {
	return g.buildAdjacency(true)
}

func (g *Graph) buildAdjacency(symmetric bool) map[string][]Neighbor {
	// weight per ordered (from, to) pair, with a parallel index slice to keep
	// neighbor order deterministic (first-seen edge order)
	weights := make(map[string]map[string]float64, len(g.nodes))
	order := make(map[string][]string, len(g.nodes))

	add := func(from, to string, w float64) {
		m, ok := weights[from]
		if !ok {
			m = make(map[string]float64)
			weights[from] = m
		}
		if _, seen := m[to]; !seen {
			order[from] = append(order[from], to)
		}
		m[to] += w
	}

	for _, e := range g.edges {
		add(e.From, e.To, e.Weight)
		if symmetric && e.From != e.To {
			add(e.To, e.From, e.Weight)
		}
	}

	adj := make(map[string][]Neighbor, len(g.nodes))
	for _, id := range g.nodes {
		neighbors := make([]Neighbor, 0, len(order[id]))
		for _, to := range order[id] {
			neighbors = append(neighbors, Neighbor{ID: to, Weight: weights[id][to]})
		}
		adj[id] = neighbors
	}
	return adj
}

// WeightedDegrees returns each node's weighted degree: the sum of incident
// edge weights. Both endpoints accumulate every edge, so a self-loop counts
// its weight twice, matching the modularity convention.
func (g *Graph) WeightedDegrees() map[string]float64 {
	degrees := make(map[string]float64, len(g.nodes))
	for _, id := range g.nodes {
		degrees[id] = 0
	}
	for _, e := range g.edges {
		degrees[e.From] += e.Weight
		degrees[e.To] += e.Weight
	}
	return degrees
}

// TotalEdgeWeight returns the sum of all edge weights (m in the modularity
// formula). Zero for degenerate graphs.
func (g *Graph) TotalEdgeWeight() float64 {
	var total float64
	for _, e := range g.edges {
		total += e.Weight
	}
	return total
}

// NeighborSets returns each node's neighbor id set over the symmetric view,
// excluding self-loops. Used by the similarity engine.
func (g *Graph) NeighborSets() map[string]map[string]bool {
	sets := make(map[string]map[string]bool, len(g.nodes))
	for _, id := range g.nodes {
		sets[id] = make(map[string]bool)
	}
	for _, e := range g.edges {
		if e.From == e.To {
			continue
		}
		sets[e.From][e.To] = true
		sets[e.To][e.From] = true
	}
	return sets
}
