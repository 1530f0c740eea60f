package rank

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/score"
)

type methodDef struct {
	name       string
	statements int
	branches   int
	refs       int
}

func project(t *testing.T, methods []methodDef, calls [][2]string) *model.Project {
	t.Helper()
	b := model.NewBuilder("/proj")
	for _, s := range methods {
		require.NoError(t, b.AddMethod(model.MethodInfo{
			ID:             model.MethodID("p.S", s.name, nil),
			ClassName:      "p.S",
			Name:           s.name,
			Signature:      model.Signature(s.name, nil),
			File:           "src/main/java/p/S.java",
			StatementCount: s.statements,
			BranchCount:    s.branches,
		}))
	}
	for _, c := range calls {
		require.True(t, b.AddCall(model.MethodID("p.S", c[0], nil), model.MethodID("p.S", c[1], nil)))
	}
	for _, s := range methods {
		for i := 0; i < s.refs; i++ {
			b.AddTestReference(model.MethodID("p.S", s.name, nil), "src/test/java/p/STest.java")
		}
	}
	return b.Freeze()
}

func scoreAll(p *model.Project) Sets {
	sets := Sets{}
	for _, s := range []score.Scorer{
		score.NewHeuristicScorer(score.DefaultHeuristicParams()),
		score.NewComplexityScorer(score.DefaultComplexityParams()),
		score.NewDependencyScorer(score.DefaultDependencyParams()),
		score.NewTestSignalScorer(score.DefaultTestSignalParams()),
	} {
		sets[s.Name()] = s.Score(p)
	}
	return sets
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"business", "algorithmic", "balanced", "any", " Business "} {
		m, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.True(t, m.Valid())
	}

	_, err := ParseMode("fastest")
	var modeErr *UnknownModeError
	require.True(t, errors.As(err, &modeErr))
	assert.Equal(t, "fastest", modeErr.Name)
	assert.Contains(t, err.Error(), "business")

	_, err = ParseMode("")
	assert.Error(t, err)
}

func TestModeWeightsSumToOne(t *testing.T) {
	for _, m := range Modes() {
		w := m.Weights()
		assert.InDelta(t, 1.0, w.Heuristic+w.Complexity+w.Dependency+w.TestSignal, 1e-9, m.String())
	}
	assert.True(t, Business.ExcludesAccessors())
	assert.False(t, Any.ExcludesAccessors())
}

func TestAggregateScenario(t *testing.T) {
	p := project(t, []methodDef{
		{name: "foo", statements: 0},
		{name: "bar", statements: 6, branches: 2, refs: 1},
		{name: "baz", statements: 40, branches: 10},
		{name: "c1", statements: 1},
		{name: "c2", statements: 1},
		{name: "c3", statements: 1},
	}, [][2]string{
		{"c1", "bar"}, {"c2", "bar"}, {"c3", "bar"},
		{"c1", "baz"},
	})

	got, stats, err := Aggregate(p, scoreAll(p), Options{Mode: Business, Top: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "p.S#bar()", got[0].ID)
	assert.Equal(t, "p.S#baz()", got[1].ID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.InDelta(t, 0.705, got[0].CompositeScore, 0.001)
	assert.InDelta(t, 0.452, got[1].CompositeScore, 0.001)

	assert.Equal(t, 6, stats.Indexed)
	assert.Equal(t, 2, stats.Eligible)
	assert.Equal(t, 4, stats.Excluded[ReasonTooSmall])
}

func TestAggregateTopBounds(t *testing.T) {
	p := project(t, []methodDef{
		{name: "a", statements: 5, branches: 1},
		{name: "b", statements: 9, branches: 2},
		{name: "c", statements: 12, branches: 0},
	}, nil)
	sets := scoreAll(p)

	none, _, err := Aggregate(p, sets, Options{Mode: Balanced, Top: 0})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, stats, err := Aggregate(p, sets, Options{Mode: Balanced, Top: 50})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, stats.Eligible)
	for i, c := range all {
		assert.Equal(t, i+1, c.Rank)
	}

	_, _, err = Aggregate(p, sets, Options{Mode: Balanced, Top: -1})
	assert.Error(t, err)
}

func TestAggregateIsDeterministic(t *testing.T) {
	p := project(t, []methodDef{
		{name: "a", statements: 5, branches: 1},
		{name: "b", statements: 5, branches: 1},
		{name: "c", statements: 5, branches: 1},
		{name: "d", statements: 30, branches: 4, refs: 2},
	}, [][2]string{{"a", "d"}, {"b", "d"}})
	sets := scoreAll(p)

	first, _, err := Aggregate(p, sets, Options{Mode: Algorithmic, Top: 4})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := Aggregate(p, sets, Options{Mode: Algorithmic, Top: 4})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// a, b and c tie on everything but the id.
	var ids []string
	for _, c := range first {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"p.S#a()", "p.S#b()", "p.S#c()"}, ids[len(ids)-3:])
}

func TestOrderTieBreaks(t *testing.T) {
	cs := []Candidate{
		{ID: "z", CompositeScore: 0.5, Scores: Scores{TestSignal: 0.2}, Complexity: 2},
		{ID: "y", CompositeScore: 0.5 + 1e-12, Scores: Scores{TestSignal: 0.9}, Complexity: 9},
		{ID: "x", CompositeScore: 0.5, Scores: Scores{TestSignal: 0.2}, Complexity: 1},
		{ID: "w", CompositeScore: 0.5, Scores: Scores{TestSignal: 0.2}, Complexity: 1},
		{ID: "v", CompositeScore: 0.7},
	}
	Order(cs)

	var ids []string
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	// y ties x on composite at 1e-9 and wins on TestSignal; w and x tie
	// down to complexity and fall back to id.
	assert.Equal(t, []string{"v", "y", "w", "x", "z"}, ids)
}

func TestAggregateTieBreakOnTestSignal(t *testing.T) {
	p := project(t, []methodDef{
		{name: "tested", statements: 10, branches: 2},
		{name: "untested", statements: 10, branches: 2},
	}, nil)
	sets := Sets{
		score.NameHeuristic:  {"p.S#tested()": {Score: 0.5}, "p.S#untested()": {Score: 0.9}},
		score.NameComplexity: {"p.S#tested()": {Score: 0.5}, "p.S#untested()": {Score: 0.5}},
		score.NameDependency: {"p.S#tested()": {Score: 0.5}, "p.S#untested()": {Score: 0.5}},
		score.NameTestSignal: {"p.S#tested()": {Score: 0.9}, "p.S#untested()": {Score: 0.5}},
	}

	got, _, err := Aggregate(p, sets, Options{Mode: Balanced, Top: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, got[0].CompositeScore, got[1].CompositeScore, 1e-12)
	assert.Equal(t, "p.S#tested()", got[0].ID)
}

func TestAggregateExclusions(t *testing.T) {
	b := model.NewBuilder("/proj")
	add := func(m model.MethodInfo) {
		m.ClassName = "p.E"
		m.ID = model.MethodID("p.E", m.Name, nil)
		m.Signature = model.Signature(m.Name, nil)
		m.File = "src/main/java/p/E.java"
		require.NoError(t, b.AddMethod(m))
	}
	add(model.MethodInfo{Name: "gen", StatementCount: 10, Modifiers: model.Modifiers{Generated: true}})
	add(model.MethodInfo{Name: "main", StatementCount: 10, IsEntryPoint: true})
	add(model.MethodInfo{Name: "getName", StatementCount: 1, IsAccessor: true})
	add(model.MethodInfo{Name: "listed", StatementCount: 10})
	add(model.MethodInfo{Name: "kept", StatementCount: 10})
	p := b.Freeze()
	sets := scoreAll(p)

	got, stats, err := Aggregate(p, sets, Options{Mode: Any, Top: 10, MinStatements: 1, Exclude: []string{"p.E#listed()"}})
	require.NoError(t, err)

	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"p.E#getName()", "p.E#kept()"}, sortedCopy(ids))
	assert.Equal(t, 1, stats.Excluded[ReasonGenerated])
	assert.Equal(t, 1, stats.Excluded[ReasonEntryPoint])
	assert.Equal(t, 1, stats.Excluded[ReasonExcludeList])

	got, stats, err = Aggregate(p, sets, Options{Mode: Business, Top: 10, MinStatements: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Excluded[ReasonAccessor])
	assert.Len(t, got, 2)
}

func TestAggregateAccessorWithDefaultMinimum(t *testing.T) {
	b := model.NewBuilder("/proj")
	for _, m := range []model.MethodInfo{
		{Name: "getTotal", StatementCount: 4, BranchCount: 1, IsAccessor: true},
		{Name: "work", StatementCount: 6, BranchCount: 2},
	} {
		m.ClassName = "p.C"
		m.ID = model.MethodID("p.C", m.Name, nil)
		m.Signature = model.Signature(m.Name, nil)
		m.File = "src/main/java/p/C.java"
		require.NoError(t, b.AddMethod(m))
	}
	p := b.Freeze()
	sets := scoreAll(p)

	got, stats, err := Aggregate(p, sets, Options{Mode: Business, Top: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p.C#work()", got[0].ID)
	assert.Equal(t, 1, stats.Excluded[ReasonAccessor])

	got, _, err = Aggregate(p, sets, Options{Mode: Any, Top: 10})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAggregateRejectsIncompleteSets(t *testing.T) {
	p := project(t, []methodDef{{name: "a", statements: 5, branches: 1}}, nil)
	sets := scoreAll(p)
	delete(sets, score.NameDependency)

	_, _, err := Aggregate(p, sets, Options{Mode: Business, Top: 1})
	assert.Error(t, err)

	_, _, err = Aggregate(p, scoreAll(p), Options{Mode: "bogus", Top: 1})
	var modeErr *UnknownModeError
	assert.True(t, errors.As(err, &modeErr))
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestDescribe(t *testing.T) {
	infos := Describe()
	require.Len(t, infos, 4)
	assert.Equal(t, "any", infos[3].Name)
	assert.False(t, infos[3].ExcludesAccessors)
	assert.NotEmpty(t, infos[0].Description)
}
