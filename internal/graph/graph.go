// Package graph provides call-graph views over a frozen Method Index:
// degrees, adjacency and strongly connected components.
package graph

import (
	"sort"

	"github.com/tdkit/tdselect/internal/model"
)

// Graph represents an in-memory call graph.
type Graph struct {
	// Adjacency list: method -> methods it calls
	Edges map[string][]string
	// Reverse adjacency: method -> methods that call it
	ReverseEdges map[string][]string
}

// FromProject builds the call graph of a frozen project. Every indexed
// method is a node, including methods with no edges.
func FromProject(p *model.Project) *Graph {
	g := &Graph{
		Edges:        make(map[string][]string, p.Len()),
		ReverseEdges: make(map[string][]string, p.Len()),
	}
	for _, id := range p.IDs() {
		g.Edges[id] = p.Calls(id)
		g.ReverseEdges[id] = p.Callers(id)
	}
	return g
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Edges)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.Edges {
		count += len(targets)
	}
	return count
}

// Nodes returns all node IDs in ascending order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.Edges))
	for node := range g.Edges {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// ComputeInOutDegree returns in-degree and out-degree for every node.
func (g *Graph) ComputeInOutDegree() (inDegree, outDegree map[string]int) {
	inDegree = make(map[string]int, len(g.Edges))
	outDegree = make(map[string]int, len(g.Edges))
	for node, targets := range g.Edges {
		outDegree[node] = len(targets)
		if _, ok := inDegree[node]; !ok {
			inDegree[node] = 0
		}
		for _, t := range targets {
			inDegree[t]++
		}
	}
	return inDegree, outDegree
}

// Stats summarizes the shape of the graph.
type Stats struct {
	Nodes       int
	Edges       int
	Roots       int // no callers
	Leaves      int // no callees
	Isolated    int // neither
	Cycles      int // strongly connected components with more than one method
	LargestSCC  int
	MaxInDegree int
}

// ComputeStats computes summary statistics for the graph.
func (g *Graph) ComputeStats() Stats {
	in, out := g.ComputeInOutDegree()
	s := Stats{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
	for node := range g.Edges {
		if in[node] == 0 {
			s.Roots++
		}
		if out[node] == 0 {
			s.Leaves++
		}
		if in[node] == 0 && out[node] == 0 {
			s.Isolated++
		}
		if in[node] > s.MaxInDegree {
			s.MaxInDegree = in[node]
		}
	}
	for _, c := range g.Components() {
		if len(c) > 1 {
			s.Cycles++
		}
		if len(c) > s.LargestSCC {
			s.LargestSCC = len(c)
		}
	}
	return s
}
