package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdkit/tdselect/internal/model"
)

// buildProject creates a project with the named methods on class p.G and the
// given call edges.
func buildProject(t *testing.T, names []string, edges [][2]string) *model.Project {
	t.Helper()
	b := model.NewBuilder("/proj")
	for _, n := range names {
		require.NoError(t, b.AddMethod(model.MethodInfo{ID: id(n), ClassName: "p.G", Name: n}))
	}
	for _, e := range edges {
		require.True(t, b.AddCall(id(e[0]), id(e[1])))
	}
	return b.Freeze()
}

func id(name string) string {
	return model.MethodID("p.G", name, nil)
}

func TestFromProject(t *testing.T) {
	p := buildProject(t, []string{"a", "b", "c", "lonely"}, [][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "c"},
	})
	g := FromProject(p)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, []string{id("a"), id("b")}, g.ReverseEdges[id("c")])
	assert.Equal(t, []string{id("b"), id("c")}, g.Edges[id("a")])
	assert.Equal(t, []string{id("a"), id("b"), id("c"), id("lonely")}, g.Nodes())

	in, out := g.ComputeInOutDegree()
	assert.Equal(t, 2, out[id("a")])
	assert.Equal(t, 2, in[id("c")])
	assert.Equal(t, 0, in[id("lonely")])
	assert.Equal(t, 0, out[id("lonely")])
	assert.Equal(t, 0, in[id("a")])
}

func TestCycleSizes(t *testing.T) {
	p := buildProject(t, []string{"a", "b", "c", "d", "e"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}, {"d", "e"},
	})
	g := FromProject(p)

	sizes := g.CycleSizes()
	assert.Equal(t, 3, sizes[id("a")])
	assert.Equal(t, 3, sizes[id("b")])
	assert.Equal(t, 3, sizes[id("c")])
	assert.Equal(t, 1, sizes[id("d")])
	assert.Equal(t, 1, sizes[id("e")])

	assert.Contains(t, g.Components(), []string{id("a"), id("b"), id("c")})
	assert.Equal(t, 1, g.ComputeStats().Cycles)
}

func TestSelfRecursionIsNotACycle(t *testing.T) {
	p := buildProject(t, []string{"fact"}, [][2]string{{"fact", "fact"}})
	g := FromProject(p)

	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 1, g.CycleSizes()[id("fact")])
	assert.Equal(t, 0, g.ComputeStats().Cycles)
}

func TestComputeStats(t *testing.T) {
	p := buildProject(t, []string{"a", "b", "c", "x"}, [][2]string{
		{"a", "b"}, {"b", "a"}, {"b", "c"},
	})
	s := FromProject(p).ComputeStats()

	assert.Equal(t, Stats{
		Nodes:       4,
		Edges:       3,
		Roots:       1,
		Leaves:      2,
		Isolated:    1,
		Cycles:      1,
		LargestSCC:  2,
		MaxInDegree: 1,
	}, s)
}
