package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/strataview/marketgraph/pkg/algorithms"
	"github.com/strataview/marketgraph/pkg/graph"
	"github.com/strataview/marketgraph/pkg/market"
	"github.com/strataview/marketgraph/pkg/validation"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	dashboardView view = iota
	communitiesView
	marketView
)

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type communityItem struct {
	community *algorithms.Community
}

func (i communityItem) Title() string {
	return fmt.Sprintf("Community %d (%d nodes)", i.community.ID, i.community.Size)
}

func (i communityItem) Description() string {
	members := i.community.Nodes
	if len(members) > 6 {
		return strings.Join(members[:6], ", ") + fmt.Sprintf(" ... +%d", len(members)-6)
	}
	return strings.Join(members, ", ")
}

func (i communityItem) FilterValue() string {
	return strings.Join(i.community.Nodes, " ")
}

type model struct {
	graph         *graph.Graph
	partition     *algorithms.CommunityResult
	report        *market.Snapshot
	currentView   view
	communityList list.Model
	help          help.Model
	keys          keyMap
	width         int
	height        int
	elapsed       time.Duration
}

func initialModel(g *graph.Graph) model {
	start := time.Now()
	partition, err := algorithms.Louvain(context.Background(), g, algorithms.DefaultLouvainConfig())
	if err != nil {
		log.Fatalf("Community detection failed: %v", err)
	}
	elapsed := time.Since(start)
	report := market.AnalyzeStructure(g, partition)

	items := make([]list.Item, 0, len(partition.Communities))
	for _, c := range partition.Communities {
		items = append(items, communityItem{community: c})
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 20)
	l.Title = "Communities"
	l.SetShowHelp(false)

	return model{
		graph:         g,
		partition:     partition,
		report:        report,
		currentView:   dashboardView,
		communityList: l,
		help:          help.New(),
		keys:          keys,
		elapsed:       elapsed,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.communityList.SetSize(msg.Width-6, msg.Height-10)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % 3

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = 2
			} else {
				m.currentView--
			}
		}
	}

	if m.currentView == communitiesView {
		m.communityList, cmd = m.communityList.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("MarketGraph - Community Browser"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case communitiesView:
		s.WriteString(contentStyle.Render(m.communityList.View()))
	case marketView:
		s.WriteString(m.renderMarket())
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Dashboard", "Communities", "Market"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderDashboard() string {
	statsContent := fmt.Sprintf(`Graph
Nodes:        %d
Edges:        %d

Partition
Communities:  %d
Modularity:   %.4f
Iterations:   %d
Converged:    %v
Time:         %s`,
		m.graph.NodeCount(),
		m.graph.EdgeCount(),
		m.partition.CommunityCount,
		m.partition.Modularity,
		m.partition.Iterations,
		m.partition.Converged,
		m.elapsed.Round(time.Microsecond),
	)

	marketContent := fmt.Sprintf(`Market
Structure:     %s
Herfindahl:    %.1f
Consolidation: %.2f
Dominant:      %d players`,
		m.report.Structure,
		m.report.Herfindahl,
		m.report.ConsolidationIndex,
		len(m.report.DominantPlayers),
	)

	statsBox := statsBoxStyle.Render(statsContent)
	marketBox := statsBoxStyle.Render(marketContent)

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBox, marketBox),
	)
}

func (m model) renderMarket() string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("Structure: %s\n", m.report.Structure))
	s.WriteString(fmt.Sprintf("Herfindahl index: %.1f\n", m.report.Herfindahl))
	s.WriteString(fmt.Sprintf("Consolidation index: %.2f\n\n", m.report.ConsolidationIndex))

	if len(m.report.DominantPlayers) > 0 {
		s.WriteString("Dominant players:\n")
		for _, p := range m.report.DominantPlayers {
			s.WriteString(fmt.Sprintf("  %-20s community %d, share %.1f%%\n",
				p.NodeID, p.CommunityID, p.MarketShare*100))
		}
		s.WriteString("\n")
	}

	for _, insight := range m.report.Insights {
		s.WriteString(fmt.Sprintf("* %s\n", insight))
	}

	return contentStyle.Render(statsBoxStyle.Render(strings.TrimRight(s.String(), "\n")))
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

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tui <graph.json>")
		os.Exit(1)
	}

	g, err := loadGraph(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	p := tea.NewProgram(initialModel(g), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
