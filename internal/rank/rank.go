package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/score"
)

// DefaultMinStatements is the smallest eligible statement count.
const DefaultMinStatements = 2

// compositeResolution is the granularity at which composites compare equal.
const compositeResolution = 1e9

// Exclusion reasons, reported in Stats.
const (
	ReasonTooSmall    = "belowMinStatements"
	ReasonGenerated   = "generated"
	ReasonEntryPoint  = "entryPoint"
	ReasonAccessor    = "accessor"
	ReasonExcludeList = "excludeList"
)

// Options select the preset and the cut.
type Options struct {
	Mode          Mode
	Top           int
	MinStatements int
	// Exclude lists method ids that are never selected.
	Exclude []string
}

// Scores holds the four dimension scores of one method.
type Scores struct {
	Heuristic  float64
	Complexity float64
	Dependency float64
	TestSignal float64
}

// Composite applies the weights.
func (s Scores) Composite(w Weights) float64 {
	return w.Heuristic*s.Heuristic +
		w.Complexity*s.Complexity +
		w.Dependency*s.Dependency +
		w.TestSignal*s.TestSignal
}

// Candidate is one selected method.
type Candidate struct {
	ID             string
	Rank           int
	CompositeScore float64
	Scores         Scores
	// Complexity is the raw 1 + branches value used for tie-breaks.
	Complexity int
}

// Stats summarize one aggregation.
type Stats struct {
	Indexed  int
	Eligible int
	Excluded map[string]int
}

// Sets holds one score.Records per scorer, keyed by scorer name.
type Sets map[string]score.Records

// Aggregate filters, scores, orders and cuts the methods of p.
func Aggregate(p *model.Project, sets Sets, opts Options) ([]Candidate, Stats, error) {
	if !opts.Mode.Valid() {
		return nil, Stats{}, &UnknownModeError{Name: string(opts.Mode)}
	}
	if opts.Top < 0 {
		return nil, Stats{}, fmt.Errorf("aggregate: negative top %d", opts.Top)
	}
	for _, name := range []string{score.NameHeuristic, score.NameComplexity, score.NameDependency, score.NameTestSignal} {
		if _, ok := sets[name]; !ok {
			return nil, Stats{}, fmt.Errorf("aggregate: missing %s scores", name)
		}
	}

	excluded := make(map[string]struct{}, len(opts.Exclude))
	for _, id := range opts.Exclude {
		excluded[id] = struct{}{}
	}

	weights := opts.Mode.Weights()
	stats := Stats{Indexed: p.Len(), Excluded: make(map[string]int)}
	var pool []Candidate
	for _, m := range p.Methods() {
		if reason := exclusion(&m, opts, excluded); reason != "" {
			stats.Excluded[reason]++
			continue
		}
		s, err := lookup(sets, m.ID)
		if err != nil {
			return nil, Stats{}, err
		}
		pool = append(pool, Candidate{
			ID:             m.ID,
			CompositeScore: s.Composite(weights),
			Scores:         s,
			Complexity:     m.Complexity(),
		})
	}
	stats.Eligible = len(pool)

	Order(pool)
	if opts.Top < len(pool) {
		pool = pool[:opts.Top]
	}
	for i := range pool {
		pool[i].Rank = i + 1
	}
	if len(pool) == 0 {
		pool = []Candidate{}
	}
	return pool, stats, nil
}

// Order sorts candidates by composite score descending, then TestSignal
// descending, then complexity ascending, then id.
func Order(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if qa, qb := quantize(a.CompositeScore), quantize(b.CompositeScore); qa != qb {
			return qa > qb
		}
		if qa, qb := quantize(a.Scores.TestSignal), quantize(b.Scores.TestSignal); qa != qb {
			return qa > qb
		}
		if a.Complexity != b.Complexity {
			return a.Complexity < b.Complexity
		}
		return a.ID < b.ID
	})
}

func quantize(x float64) int64 {
	return int64(math.Round(x * compositeResolution))
}

func exclusion(m *model.MethodInfo, opts Options, excluded map[string]struct{}) string {
	minStatements := opts.MinStatements
	if minStatements <= 0 {
		minStatements = DefaultMinStatements
	}
	switch {
	case isExcluded(m.ID, excluded):
		return ReasonExcludeList
	case m.Modifiers.Generated:
		return ReasonGenerated
	case m.IsEntryPoint:
		return ReasonEntryPoint
	case m.StatementCount < minStatements:
		return ReasonTooSmall
	case m.IsAccessor && opts.Mode.ExcludesAccessors():
		return ReasonAccessor
	}
	return ""
}

func isExcluded(id string, excluded map[string]struct{}) bool {
	_, ok := excluded[id]
	return ok
}

func lookup(sets Sets, id string) (Scores, error) {
	var s Scores
	for name, dst := range map[string]*float64{
		score.NameHeuristic:  &s.Heuristic,
		score.NameComplexity: &s.Complexity,
		score.NameDependency: &s.Dependency,
		score.NameTestSignal: &s.TestSignal,
	} {
		rec, ok := sets[name][id]
		if !ok {
			return Scores{}, fmt.Errorf("aggregate: no %s score for %s", name, id)
		}
		*dst = rec.Score
	}
	return s, nil
}
