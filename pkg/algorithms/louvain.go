package algorithms

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/strataview/marketgraph/pkg/graph"
)

// LouvainConfig configures the greedy modularity-optimization detector.
type LouvainConfig struct {
	// MaxIterations caps the number of full passes. 0 means the default.
	MaxIterations int
	// Resolution trades off community granularity; higher values favor
	// more, smaller communities. 0 means the default of 1.0.
	Resolution float64
	// Shuffle randomizes node visitation order each pass using RandomSeed.
	// Off by default: fixed input order keeps repeated runs identical.
	Shuffle bool
	// RandomSeed seeds the shuffle. 0 seeds from the clock; callers wanting
	// reproducible shuffled runs must fix the seed.
	RandomSeed int64
}

// DefaultLouvainConfig returns the standard configuration.
func DefaultLouvainConfig() LouvainConfig {
	return LouvainConfig{
		MaxIterations: 100,
		Resolution:    1.0,
	}
}

func (c *LouvainConfig) applyDefaults() {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	if c.Resolution <= 0 {
		c.Resolution = 1.0
	}
}

// Louvain detects communities by greedy modularity optimization. Every node
// starts in its own community; each pass visits every node, scores each
// candidate community with
//
//	ΔQ ≈ w(node→community)/m − resolution·(k/2m)²
//
// and moves the node only when a neighboring community strictly beats its
// current one, until a pass produces no moves or MaxIterations is reached.
// Nodes are visited in input order unless Shuffle is set, so unshuffled runs
// with the same configuration yield identical partitions. Returns the best partition
// found with Converged=false when the cap is hit. The only error is context
// cancellation, checked at pass boundaries.
func Louvain(ctx context.Context, g *graph.Graph, cfg LouvainConfig) (*CommunityResult, error) {
	cfg.applyDefaults()

	if g.NodeCount() == 0 {
		return emptyResult(), nil
	}

	nodes := g.Nodes()
	labels := make(map[string]int, len(nodes))
	for i, id := range nodes {
		labels[id] = i
	}

	m := g.TotalEdgeWeight()
	if m == 0 {
		// no edges: every node stays a singleton
		res := buildResult(g, labels)
		res.Converged = true
		return res, nil
	}

	adj := g.SymmetricAdjacency()
	degrees := g.WeightedDegrees()

	order := make([]string, len(nodes))
	copy(order, nodes)
	var rng *rand.Rand
	if cfg.Shuffle {
		seed := cfg.RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	converged := false
	iterations := 0
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("louvain pass %d: %w", iter, err)
		}
		if rng != nil {
			rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		moved := false
		for _, node := range order {
			// weight from this node into each neighboring community,
			// tracked in first-seen adjacency order for deterministic
			// tie-breaking
			commWeight := make(map[int]float64)
			var commOrder []int
			for _, nb := range adj[node] {
				if nb.ID == node {
					continue
				}
				c := labels[nb.ID]
				if _, seen := commWeight[c]; !seen {
					commOrder = append(commOrder, c)
				}
				commWeight[c] += nb.Weight
			}

			current := labels[node]
			degTerm := degrees[node] / (2 * m)
			penalty := cfg.Resolution * degTerm * degTerm

			// staying put is the baseline, floored at zero; a move
			// needs a strictly larger gain
			bestComm := current
			bestGain := commWeight[current]/m - penalty
			if bestGain < 0 {
				bestGain = 0
			}
			for _, c := range commOrder {
				if c == current {
					continue
				}
				gain := commWeight[c]/m - penalty
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			if bestComm != current {
				labels[node] = bestComm
				moved = true
			}
		}

		iterations++
		if !moved {
			converged = true
			break
		}
	}

	res := buildResult(g, labels)
	res.Modularity = Modularity(g, res.NodeCommunity)
	res.Converged = converged
	res.Iterations = iterations
	return res, nil
}
