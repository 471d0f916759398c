// Package market derives market-structure readings from community
// partitions: concentration (Herfindahl index), structure classification,
// dominant-player identification, and consolidation trend tracking across
// graph snapshots.
package market

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/strataview/marketgraph/pkg/algorithms"
	"github.com/strataview/marketgraph/pkg/graph"
)

// Structure classifies the market implied by a partition.
type Structure string

const (
	StructureHighlyFragmented Structure = "highly_fragmented"
	StructureMonopolistic     Structure = "monopolistic"
	StructureConsolidating    Structure = "consolidating"
	StructureBalanced         Structure = "balanced"
)

// Classification thresholds.
const (
	// HHIMonopolistic is the Herfindahl index above which a market reads as
	// monopolistic.
	HHIMonopolistic = 2500.0
	// HHIConsolidating is the Herfindahl index above which a market reads
	// as consolidating.
	HHIConsolidating = 1800.0
	// FragmentationModularity is the modularity above which, combined with
	// a community count exceeding a third of the nodes, a market reads as
	// highly fragmented.
	FragmentationModularity = 0.6
)

// DominantPlayer is the highest-weighted-degree node of one community.
type DominantPlayer struct {
	NodeID      string  `json:"nodeId"`
	CommunityID int     `json:"communityId"`
	Degree      float64 `json:"degree"`
	MarketShare float64 `json:"marketShare"`
}

// Snapshot is a read-only market-structure report derived from one graph
// and one partition.
type Snapshot struct {
	ReportID           string           `json:"reportId"`
	Timestamp          string           `json:"timestamp,omitempty"`
	Modularity         float64          `json:"modularity"`
	CommunityCount     int              `json:"communityCount"`
	Herfindahl         float64          `json:"herfindahl"`
	Structure          Structure        `json:"structure"`
	DominantPlayers    []DominantPlayer `json:"dominantPlayers"`
	Insights           []string         `json:"insights"`
	ConsolidationIndex float64          `json:"consolidationIndex"`
}

// Herfindahl computes the concentration index 10000·Σ(size/n)² from
// community sizes. A single community covering all n nodes scores exactly
// 10000. Returns 0 when n is 0.
func Herfindahl(sizes []int, n int) float64 {
	if n == 0 {
		return 0
	}
	var sum float64
	for _, size := range sizes {
		share := float64(size) / float64(n)
		sum += share * share
	}
	return 10000 * sum
}

// AnalyzeStructure turns a partition into a market-structure snapshot:
// community sizes feed the Herfindahl index, fixed thresholds classify the
// structure, and each community's highest-weighted-degree node is reported
// as its dominant player (top five by market share).
func AnalyzeStructure(g *graph.Graph, result *algorithms.CommunityResult) *Snapshot {
	n := g.NodeCount()

	sizes := make([]int, 0, len(result.Communities))
	for _, c := range result.Communities {
		sizes = append(sizes, c.Size)
	}
	hhi := Herfindahl(sizes, n)

	snap := &Snapshot{
		ReportID:           uuid.NewString(),
		Modularity:         result.Modularity,
		CommunityCount:     result.CommunityCount,
		Herfindahl:         hhi,
		Structure:          classify(result.Modularity, result.CommunityCount, n, hhi),
		DominantPlayers:    dominantPlayers(g, result),
		Insights:           insights(result.Modularity, result.CommunityCount, n, hhi),
		ConsolidationIndex: consolidationIndex(sizes),
	}
	return snap
}

func classify(modularity float64, communityCount, n int, hhi float64) Structure {
	switch {
	case n > 0 && modularity > FragmentationModularity && float64(communityCount) > float64(n)/3:
		return StructureHighlyFragmented
	case hhi > HHIMonopolistic:
		return StructureMonopolistic
	case hhi > HHIConsolidating:
		return StructureConsolidating
	default:
		return StructureBalanced
	}
}

// dominantPlayers picks each community's highest-weighted-degree node, with
// market share degree/(2n), and returns the top five by share.
func dominantPlayers(g *graph.Graph, result *algorithms.CommunityResult) []DominantPlayer {
	n := g.NodeCount()
	if n == 0 {
		return []DominantPlayer{}
	}
	degrees := g.WeightedDegrees()

	players := make([]DominantPlayer, 0, len(result.Communities))
	for _, c := range result.Communities {
		best := ""
		bestDegree := -1.0
		for _, id := range c.Nodes {
			if degrees[id] > bestDegree {
				bestDegree = degrees[id]
				best = id
			}
		}
		if best == "" {
			continue
		}
		players = append(players, DominantPlayer{
			NodeID:      best,
			CommunityID: c.ID,
			Degree:      bestDegree,
			MarketShare: bestDegree / (2 * float64(n)),
		})
	}

	sort.SliceStable(players, func(i, j int) bool {
		if players[i].MarketShare != players[j].MarketShare {
			return players[i].MarketShare > players[j].MarketShare
		}
		return players[i].CommunityID < players[j].CommunityID
	})
	if len(players) > 5 {
		players = players[:5]
	}
	return players
}

func insights(modularity float64, communityCount, n int, hhi float64) []string {
	out := make([]string, 0, 3)
	if n > 0 && modularity > FragmentationModularity && float64(communityCount) > float64(n)/3 {
		out = append(out, fmt.Sprintf("Market is highly fragmented (%d communities across %d entities); expect competitive pricing pressure and acquisition opportunities", communityCount, n))
	}
	switch {
	case hhi > HHIMonopolistic:
		out = append(out, fmt.Sprintf("Herfindahl index %.0f signals monopolistic concentration; further consolidation is likely to attract regulatory scrutiny", hhi))
	case hhi > HHIConsolidating:
		out = append(out, fmt.Sprintf("Herfindahl index %.0f signals a consolidating market; dominant players are absorbing smaller entities", hhi))
	}
	if len(out) == 0 {
		out = append(out, "Market structure is balanced; no single community dominates")
	}
	return out
}

// consolidationIndex is the largest community size over the average
// community size; 0 when there are no communities.
func consolidationIndex(sizes []int) float64 {
	if len(sizes) == 0 {
		return 0
	}
	largest, total := 0, 0
	for _, size := range sizes {
		total += size
		if size > largest {
			largest = size
		}
	}
	average := float64(total) / float64(len(sizes))
	if average == 0 {
		return 0
	}
	return float64(largest) / average
}
