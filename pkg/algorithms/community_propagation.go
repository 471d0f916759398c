package algorithms

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/strataview/marketgraph/pkg/graph"
)

// LabelPropagationConfig configures the label propagation detector.
type LabelPropagationConfig struct {
	// MaxIterations caps the number of full passes. 0 means the default
	// of 100.
	MaxIterations int
	// RandomSeed seeds the pass-order shuffle and tie-breaking. 0 seeds
	// from the clock; fix it for reproducible runs.
	RandomSeed int64
}

// DefaultLabelPropagationConfig returns the standard configuration.
func DefaultLabelPropagationConfig() LabelPropagationConfig {
	return LabelPropagationConfig{MaxIterations: 100}
}

// LabelPropagation detects communities by iterative label adoption: every
// node starts with a unique label, and each pass visits nodes in a
// randomized order, adopting the most frequent label among neighbors with
// ties broken by uniform random choice. Nodes with no neighbors keep their
// labels. The loop ends when a full pass changes nothing or MaxIterations
// is hit.
//
// Because pass order and tie-breaking are randomized, repeated calls on the
// same graph may return different but similarly-scored partitions; callers
// wanting reproducibility must fix RandomSeed. The only error is context
// cancellation, checked at pass boundaries.
func LabelPropagation(ctx context.Context, g *graph.Graph, cfg LabelPropagationConfig) (*CommunityResult, error) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 100
	}
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if g.NodeCount() == 0 {
		return emptyResult(), nil
	}

	nodes := g.Nodes()
	labels := make(map[string]int, len(nodes))
	for i, id := range nodes {
		labels[id] = i
	}

	adj := g.SymmetricAdjacency()

	order := make([]string, len(nodes))
	copy(order, nodes)

	converged := false
	iterations := 0
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("label propagation pass %d: %w", iter, err)
		}

		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		changed := false
		for _, node := range order {
			counts := make(map[int]int)
			neighborSeen := false
			for _, nb := range adj[node] {
				if nb.ID == node {
					continue
				}
				counts[labels[nb.ID]]++
				neighborSeen = true
			}
			if !neighborSeen {
				continue
			}

			maxCount := 0
			for _, count := range counts {
				if count > maxCount {
					maxCount = count
				}
			}
			tied := make([]int, 0, len(counts))
			for label, count := range counts {
				if count == maxCount {
					tied = append(tied, label)
				}
			}
			// sorted so the rng draw is the only source of randomness
			sort.Ints(tied)
			adopted := tied[rng.Intn(len(tied))]

			if adopted != labels[node] {
				labels[node] = adopted
				changed = true
			}
		}

		iterations++
		if !changed {
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
