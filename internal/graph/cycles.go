package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// gonumGraph holds the gonum representation and id mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	idToNodeID map[int64]string
}

// toGonum converts the graph to a gonum directed graph. Nodes get sequential
// ids in sorted order so component output is stable.
func (g *Graph) toGonum() *gonumGraph {
	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		idToNodeID: make(map[int64]string, len(g.Edges)),
	}
	nodeIDToID := make(map[string]int64, len(g.Edges))
	for i, node := range g.Nodes() {
		id := int64(i)
		nodeIDToID[node] = id
		gg.idToNodeID[id] = node
		gg.directed.AddNode(simple.Node(id))
	}
	for from, targets := range g.Edges {
		for _, to := range targets {
			fromID, fromOK := nodeIDToID[from]
			toID, toOK := nodeIDToID[to]
			// simple graphs reject self-loops
			if fromOK && toOK && fromID != toID {
				gg.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
			}
		}
	}
	return gg
}

// Components returns the strongly connected components of the graph. Each
// component is sorted and components are ordered by their first member.
func (g *Graph) Components() [][]string {
	gg := g.toGonum()
	sccs := topo.TarjanSCC(gg.directed)

	out := make([][]string, 0, len(sccs))
	for _, scc := range sccs {
		members := make([]string, 0, len(scc))
		for _, n := range scc {
			members = append(members, gg.idToNodeID[n.ID()])
		}
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// CycleSizes maps every node to the size of its strongly connected
// component. A node on no cycle maps to 1.
func (g *Graph) CycleSizes() map[string]int {
	sizes := make(map[string]int, len(g.Edges))
	for _, c := range g.Components() {
		for _, n := range c {
			sizes[n] = len(c)
		}
	}
	return sizes
}
