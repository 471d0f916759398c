package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/strataview/marketgraph/pkg/algorithms"
	"github.com/strataview/marketgraph/pkg/graph"
	"github.com/strataview/marketgraph/pkg/market"
	"github.com/strataview/marketgraph/pkg/validation"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))
)

func main() {
	input := flag.String("input", "", "Path to graph JSON file ({\"nodes\": [...], \"edges\": [{\"from\",\"to\",\"weight\"}]})")
	algorithm := flag.String("algorithm", "louvain", "Detector: louvain, girvan_newman, label_propagation, hierarchical, components")
	resolution := flag.Float64("resolution", 1.0, "Louvain resolution")
	iterations := flag.Int("iterations", 100, "Maximum iterations")
	target := flag.Int("target", 0, "Girvan-Newman target community count (0 = full dendrogram)")
	seed := flag.Int64("seed", 0, "Label propagation random seed (0 = clock)")
	showMarket := flag.Bool("market", false, "Derive a market-structure report from the partition")
	asJSON := flag.Bool("json", false, "Emit raw JSON instead of styled output")
	flag.Parse()

	if *input == "" {
		fail("missing -input")
	}

	g, err := loadGraph(*input)
	if err != nil {
		fail(err.Error())
	}

	ctx := context.Background()
	start := time.Now()

	var result *algorithms.CommunityResult
	switch *algorithm {
	case "louvain":
		cfg := algorithms.LouvainConfig{MaxIterations: *iterations, Resolution: *resolution}
		result, err = algorithms.Louvain(ctx, g, cfg)
	case "girvan_newman":
		result, err = algorithms.GirvanNewman(ctx, g, algorithms.GirvanNewmanConfig{TargetCommunities: *target})
	case "label_propagation":
		cfg := algorithms.LabelPropagationConfig{MaxIterations: *iterations, RandomSeed: *seed}
		result, err = algorithms.LabelPropagation(ctx, g, cfg)
	case "hierarchical":
		result, err = algorithms.HierarchicalClustering(ctx, g, algorithms.DefaultHierarchicalConfig())
	case "components":
		result = algorithms.ConnectedComponents(g)
	default:
		fail(fmt.Sprintf("unknown algorithm %q", *algorithm))
	}
	if err != nil {
		fail(err.Error())
	}
	elapsed := time.Since(start)

	if *showMarket {
		report := market.AnalyzeStructure(g, result)
		if *asJSON {
			emitJSON(report)
			return
		}
		printPartition(*algorithm, g, result, elapsed)
		fmt.Println()
		printMarket(report)
		return
	}

	if *asJSON {
		emitJSON(result)
		return
	}
	printPartition(*algorithm, g, result, elapsed)
}

func loadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var payload validation.GraphPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validation.ValidateGraphPayload(&payload); err != nil {
		return nil, err
	}

	edges := make([]graph.Edge, 0, len(payload.Edges))
	for _, e := range payload.Edges {
		weight := 1.0
		if e.Weight != nil {
			weight = *e.Weight
		}
		edges = append(edges, graph.WeightedE(e.From, e.To, weight))
	}
	var opts []graph.Option
	if payload.Directed {
		opts = append(opts, graph.Directed())
	}
	return graph.New(payload.Nodes, edges, opts...)
}

func printPartition(algorithm string, g *graph.Graph, result *algorithms.CommunityResult, elapsed time.Duration) {
	fmt.Println(titleStyle.Render("Community Detection"))
	fmt.Println()

	var summary strings.Builder
	row(&summary, "Algorithm", algorithm)
	row(&summary, "Nodes", fmt.Sprintf("%d", g.NodeCount()))
	row(&summary, "Edges", fmt.Sprintf("%d", g.EdgeCount()))
	row(&summary, "Communities", fmt.Sprintf("%d", result.CommunityCount))
	row(&summary, "Modularity", fmt.Sprintf("%.4f", result.Modularity))
	if result.Iterations > 0 {
		row(&summary, "Iterations", fmt.Sprintf("%d", result.Iterations))
	}
	row(&summary, "Time", elapsed.Round(time.Microsecond).String())
	fmt.Println(boxStyle.Render(strings.TrimRight(summary.String(), "\n")))
	fmt.Println()

	communities := make([]*algorithms.Community, len(result.Communities))
	copy(communities, result.Communities)
	sort.Slice(communities, func(i, j int) bool {
		if communities[i].Size != communities[j].Size {
			return communities[i].Size > communities[j].Size
		}
		return communities[i].ID < communities[j].ID
	})

	for _, c := range communities {
		members := c.Nodes
		suffix := ""
		if len(members) > 10 {
			suffix = fmt.Sprintf(" ... and %d more", len(members)-10)
			members = members[:10]
		}
		fmt.Printf("  %s %s%s\n",
			valueStyle.Render(fmt.Sprintf("[%d] (%d nodes)", c.ID, c.Size)),
			strings.Join(members, ", "),
			labelStyle.Render(suffix))
	}
}

func printMarket(report *market.Snapshot) {
	fmt.Println(titleStyle.Render("Market Structure"))
	fmt.Println()

	var summary strings.Builder
	row(&summary, "Structure", string(report.Structure))
	row(&summary, "Herfindahl", fmt.Sprintf("%.1f", report.Herfindahl))
	row(&summary, "Modularity", fmt.Sprintf("%.4f", report.Modularity))
	row(&summary, "Communities", fmt.Sprintf("%d", report.CommunityCount))
	row(&summary, "Consolidation", fmt.Sprintf("%.2f", report.ConsolidationIndex))
	fmt.Println(boxStyle.Render(strings.TrimRight(summary.String(), "\n")))
	fmt.Println()

	if len(report.DominantPlayers) > 0 {
		fmt.Println(labelStyle.Render("  Dominant players:"))
		for _, p := range report.DominantPlayers {
			fmt.Printf("    %s  community %d, share %.1f%%\n",
				valueStyle.Render(p.NodeID), p.CommunityID, p.MarketShare*100)
		}
		fmt.Println()
	}

	for _, insight := range report.Insights {
		fmt.Printf("  %s %s\n", valueStyle.Render("*"), insight)
	}
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", label+":")), value)
}

func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(err.Error())
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+msg)
	os.Exit(1)
}
