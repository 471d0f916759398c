package algorithms

import (
	"math"

	"github.com/strataview/marketgraph/pkg/graph"
)

// SimilarityMetric selects which similarity formula to use.
type SimilarityMetric int

const (
	SimilarityJaccard SimilarityMetric = iota // |A∩B| / |A∪B|
	SimilarityCosine                          // |A∩B| / sqrt(|A|×|B|)
)

// String returns the metric's wire name.
func (m SimilarityMetric) String() string {
	switch m {
	case SimilarityJaccard:
		return "jaccard"
	case SimilarityCosine:
		return "cosine"
	default:
		return "unknown"
	}
}

// SimilarityMatrix holds pairwise node similarity scores in [0,1], keyed by
// ordered pair; (a,b) and (b,a) hold equal values.
type SimilarityMatrix map[[2]string]float64

// At returns the score for a pair, 0 when the pair was never computed.
func (m SimilarityMatrix) At(a, b string) float64 {
	return m[[2]string{a, b}]
}

// similarityScore computes the metric over two neighbor sets. Both formulas
// define 0 for empty inputs, sidestepping the zero divisions.
func similarityScore(setA, setB map[string]bool, metric SimilarityMetric) float64 {
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	// iterate the smaller set
	small, big := setA, setB
	if len(setA) > len(setB) {
		small, big = setB, setA
	}
	intersection := 0
	for id := range small {
		if big[id] {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}

	switch metric {
	case SimilarityJaccard:
		union := len(setA) + len(setB) - intersection
		return float64(intersection) / float64(union)
	case SimilarityCosine:
		return float64(intersection) / math.Sqrt(float64(len(setA))*float64(len(setB)))
	default:
		return 0
	}
}

// NodeSimilarity computes the similarity of two nodes' neighbor sets over
// the symmetric edge view. A node's similarity with itself is 1 when it has
// at least one neighbor, 0 otherwise.
func NodeSimilarity(g *graph.Graph, a, b string, metric SimilarityMetric) float64 {
	sets := g.NeighborSets()
	if a == b {
		if len(sets[a]) > 0 {
			return 1
		}
		return 0
	}
	return similarityScore(sets[a], sets[b], metric)
}

// PairwiseSimilarity builds the full node-pair similarity matrix, including
// self-pairs. Neighbor sets are computed once, so the cost is the O(n²)
// pair loop itself.
func PairwiseSimilarity(g *graph.Graph, metric SimilarityMetric) SimilarityMatrix {
	nodes := g.Nodes()
	sets := g.NeighborSets()

	matrix := make(SimilarityMatrix, len(nodes)*len(nodes))
	for i, a := range nodes {
		if len(sets[a]) > 0 {
			matrix[[2]string{a, a}] = 1
		} else {
			matrix[[2]string{a, a}] = 0
		}
		for _, b := range nodes[i+1:] {
			score := similarityScore(sets[a], sets[b], metric)
			matrix[[2]string{a, b}] = score
			matrix[[2]string{b, a}] = score
		}
	}
	return matrix
}
