// Package graph defines the in-memory weighted graph value consumed by the
// analysis packages. A Graph is immutable once constructed: detectors and
// analyzers build their own adjacency maps and never mutate the input.
package graph

import (
	"fmt"
)

// Edge is a weighted connection between two node identifiers. Self-loops and
// parallel edges are permitted; their weights are summed when building
// adjacency and degree maps.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// E returns an edge with the default weight of 1.
func E(from, to string) Edge {
	return Edge{From: from, To: to, Weight: 1}
}

// WeightedE returns an edge with an explicit weight.
func WeightedE(from, to string, weight float64) Edge {
	return Edge{From: from, To: to, Weight: weight}
}

// Graph holds a node set and an ordered edge list. Node order is the caller's
// input order and is preserved; detectors rely on it for deterministic
// visitation.
type Graph struct {
	nodes    []string
	nodeSet  map[string]struct{}
	edges    []Edge
	directed bool
}

// UnknownNodeError reports an edge whose endpoint is missing from the node
// set. EdgeIndex is the position of the offending edge in the input list.
type UnknownNodeError struct {
	NodeID    string
	EdgeIndex int
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("edge %d references unknown node %q", e.EdgeIndex, e.NodeID)
}

// NegativeWeightError reports an edge with a weight below zero.
type NegativeWeightError struct {
	EdgeIndex int
	Weight    float64
}

func (e *NegativeWeightError) Error() string {
	return fmt.Sprintf("edge %d has negative weight %g", e.EdgeIndex, e.Weight)
}

// DuplicateNodeError reports a node id appearing more than once in the node
// list.
type DuplicateNodeError struct {
	NodeID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node %q", e.NodeID)
}

// Option configures graph construction.
type Option func(*buildOptions)

type buildOptions struct {
	directed      bool
	implicitNodes bool
}

// Directed marks the graph as directed. Undirected is the default; community
// detection treats edges symmetrically either way, but adjacency and degree
// builders honor the flag.
func Directed() Option {
	return func(o *buildOptions) { o.directed = true }
}

// AllowImplicitNodes makes New tolerate edges whose endpoints are missing
// from the node list by appending them, instead of rejecting with
// UnknownNodeError. Implicit nodes are appended in edge order after the
// declared nodes.
func AllowImplicitNodes() Option {
	return func(o *buildOptions) { o.implicitNodes = true }
}

// New builds a graph from a node list and an edge list. Edge endpoints must
// appear in the node list unless AllowImplicitNodes is set. Node ids must be
// unique; edge weights must be >= 0.
func New(nodes []string, edges []Edge, opts ...Option) (*Graph, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{
		nodes:    make([]string, 0, len(nodes)),
		nodeSet:  make(map[string]struct{}, len(nodes)),
		edges:    make([]Edge, len(edges)),
		directed: o.directed,
	}

	for _, id := range nodes {
		if _, dup := g.nodeSet[id]; dup {
			return nil, &DuplicateNodeError{NodeID: id}
		}
		g.nodeSet[id] = struct{}{}
		g.nodes = append(g.nodes, id)
	}

	for i, e := range edges {
		if e.Weight < 0 {
			return nil, &NegativeWeightError{EdgeIndex: i, Weight: e.Weight}
		}
		for _, endpoint := range []string{e.From, e.To} {
			if _, ok := g.nodeSet[endpoint]; !ok {
				if !o.implicitNodes {
					return nil, &UnknownNodeError{NodeID: endpoint, EdgeIndex: i}
				}
				g.nodeSet[endpoint] = struct{}{}
				g.nodes = append(g.nodes, endpoint)
			}
		}
		g.edges[i] = e
	}

	return g, nil
}

// Directed reports whether the graph was built as directed.
func (g *Graph) Directed() bool {
	return g.directed
}

// NodeCount returns the number of nodes, including implicit ones.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the input list (parallel edges
// count individually).
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// HasNode reports whether id is in the node set.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeSet[id]
	return ok
}

// Nodes returns the node ids in input order. The slice is a copy.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edge list in input order. The slice is a copy.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}
