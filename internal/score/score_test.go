package score

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdkit/tdselect/internal/model"
)

// fixture: a calls b and c, b calls c, c calls a (cycle of three), d is
// unused and heavily tested.
func fixture(t *testing.T) *model.Project {
	t.Helper()
	b := model.NewBuilder("/proj")
	add := func(name string, statements, branches int) {
		require.NoError(t, b.AddMethod(model.MethodInfo{
			ID:             model.MethodID("p.X", name, nil),
			ClassName:      "p.X",
			Name:           name,
			Signature:      model.Signature(name, nil),
			File:           "src/main/java/p/X.java",
			StatementCount: statements,
			BranchCount:    branches,
		}))
	}
	add("a", 10, 3)
	add("b", 1, 0)
	add("c", 30, 1)
	add("d", 70, 0)
	b.AddCall("p.X#a()", "p.X#b()")
	b.AddCall("p.X#a()", "p.X#c()")
	b.AddCall("p.X#b()", "p.X#c()")
	b.AddCall("p.X#c()", "p.X#a()")
	for i := 0; i < 3; i++ {
		b.AddTestReference("p.X#d()", "src/test/java/p/XTest.java")
	}
	b.AddTestReference("p.X#a()", "src/test/java/p/ATest.java")
	return b.Freeze()
}

func TestHeuristicCurve(t *testing.T) {
	s := NewHeuristicScorer(DefaultHeuristicParams())

	tests := []struct {
		name       string
		statements int
		branches   int
		want       float64
	}{
		{"empty", 0, 1, 0},
		{"at floor", 1, 1, 0},
		{"rising", 4, 1, 3.0 / 7.0},
		{"ideal low", 8, 1, 1},
		{"plateau", 15, 2, 1},
		{"ideal high", 20, 1, 1},
		{"decaying", 40, 1, 0.6},
		{"at max", 60, 1, 0.2},
		{"beyond max", 200, 5, 0.2},
		{"no control flow", 12, 0, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Compute(tt.statements, tt.branches), 1e-9)
		})
	}
}

func TestHeuristicParamsValidate(t *testing.T) {
	require.NoError(t, DefaultHeuristicParams().Validate())

	p := DefaultHeuristicParams()
	p.IdealLow = p.Floor
	err := p.Validate()
	var perr *ParamError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "ideal_low", perr.Param)

	p = DefaultHeuristicParams()
	p.MaxStatements = p.IdealHigh
	assert.Error(t, p.Validate())

	p = DefaultHeuristicParams()
	p.Tail = 1.5
	assert.Error(t, p.Validate())
}

func TestComplexityScorer(t *testing.T) {
	p := fixture(t)

	recs := NewComplexityScorer(DefaultComplexityParams()).Score(p)
	require.Len(t, recs, 4)
	assert.InDelta(t, 1.0, recs["p.X#a()"].Score, 1e-9)
	assert.InDelta(t, 0.5, recs["p.X#c()"].Score, 1e-9)
	assert.InDelta(t, 0.25, recs["p.X#d()"].Score, 1e-9)
	limit, ok := recs["p.X#b()"].Input("max")
	require.True(t, ok)
	assert.Equal(t, 4.0, limit)

	fixed := NewComplexityScorer(ComplexityParams{MaxComplexity: 2}).Score(p)
	assert.Equal(t, 1.0, fixed["p.X#a()"].Score)
	assert.Equal(t, 0.5, fixed["p.X#b()"].Score)
}

func TestDependencyScorer(t *testing.T) {
	p := fixture(t)
	s := NewDependencyScorer(DefaultDependencyParams())
	recs := s.Score(p)

	assert.Equal(t, 0.0, recs["p.X#d()"].Score)
	assert.InDelta(t, math.Exp(-0.5), recs["p.X#a()"].Score, 1e-9)
	assert.InDelta(t, math.Exp(-1.0/8.0), recs["p.X#c()"].Score, 1e-9)
	assert.InDelta(t, 1.0, s.Compute(3), 1e-9)

	cycle, _ := recs["p.X#b()"].Input("cycleSize")
	assert.Equal(t, 3.0, cycle)
	cycle, _ = recs["p.X#d()"].Input("cycleSize")
	assert.Equal(t, 1.0, cycle)
	fanOut, _ := recs["p.X#a()"].Input("fanOut")
	assert.Equal(t, 2.0, fanOut)

	unused := NewDependencyScorer(DependencyParams{Ideal: 3, Sigma: 2, UnusedScore: 0.1})
	assert.Equal(t, 0.1, unused.Compute(0))

	assert.Error(t, DependencyParams{Ideal: 3, Sigma: 0}.Validate())
}

func TestTestSignalScorer(t *testing.T) {
	p := fixture(t)
	recs := NewTestSignalScorer(DefaultTestSignalParams()).Score(p)

	assert.Equal(t, 0.0, recs["p.X#b()"].Score)
	assert.InDelta(t, 1-math.Exp(-1), recs["p.X#a()"].Score, 1e-9)
	assert.InDelta(t, 1-math.Exp(-3), recs["p.X#d()"].Score, 1e-9)
	files, _ := recs["p.X#d()"].Input("testFiles")
	assert.Equal(t, 1.0, files)

	assert.Error(t, TestSignalParams{Scale: -1}.Validate())
}

func TestScoresAreBounded(t *testing.T) {
	p := fixture(t)
	scorers := []Scorer{
		NewHeuristicScorer(DefaultHeuristicParams()),
		NewComplexityScorer(DefaultComplexityParams()),
		NewDependencyScorer(DefaultDependencyParams()),
		NewTestSignalScorer(DefaultTestSignalParams()),
	}
	for _, s := range scorers {
		recs := s.Score(p)
		assert.Len(t, recs, p.Len(), s.Name())
		for id, r := range recs {
			assert.GreaterOrEqual(t, r.Score, 0.0, "%s %s", s.Name(), id)
			assert.LessOrEqual(t, r.Score, 1.0, "%s %s", s.Name(), id)
		}
	}
}
