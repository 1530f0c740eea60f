package score

import (
	"math"

	"github.com/tdkit/tdselect/internal/graph"
	"github.com/tdkit/tdselect/internal/model"
)

// DependencyParams shape the fan-in bell curve.
type DependencyParams struct {
	Ideal float64
	Sigma float64
	// UnusedScore is given to methods nobody calls.
	UnusedScore float64
}

// DefaultDependencyParams peaks at three callers.
func DefaultDependencyParams() DependencyParams {
	return DependencyParams{Ideal: 3, Sigma: 2, UnusedScore: 0}
}

// Validate checks the curve is well formed.
func (p DependencyParams) Validate() error {
	if math.IsNaN(p.Ideal) || p.Ideal < 0 {
		return &ParamError{Scorer: NameDependency, Param: "ideal", Reason: "must not be negative"}
	}
	if math.IsNaN(p.Sigma) || p.Sigma <= 0 {
		return &ParamError{Scorer: NameDependency, Param: "sigma", Reason: "must be positive"}
	}
	return unitInterval(NameDependency, "unused_score", p.UnusedScore)
}

// DependencyScorer rewards moderately used methods: removing one then
// breaks a few callers, not none and not the whole project.
type DependencyScorer struct {
	params DependencyParams
}

// NewDependencyScorer creates a dependency scorer.
func NewDependencyScorer(params DependencyParams) *DependencyScorer {
	return &DependencyScorer{params: params}
}

// Name implements Scorer.
func (s *DependencyScorer) Name() string { return NameDependency }

// Score implements Scorer.
func (s *DependencyScorer) Score(p *model.Project) Records {
	cycles := graph.FromProject(p).CycleSizes()
	out := make(Records, p.Len())
	for _, m := range p.Methods() {
		fanIn := m.FanIn()
		cycle := cycles[m.ID]
		if cycle == 0 {
			cycle = 1
		}
		out[m.ID] = Record{
			Score: s.Compute(fanIn),
			Inputs: []Input{
				{Name: "fanIn", Value: float64(fanIn)},
				{Name: "fanOut", Value: float64(m.FanOut())},
				{Name: "cycleSize", Value: float64(cycle)},
			},
		}
	}
	return out
}

// Compute scores a fan-in.
func (s *DependencyScorer) Compute(fanIn int) float64 {
	if fanIn <= 0 {
		return clamp01(s.params.UnusedScore)
	}
	d := float64(fanIn) - s.params.Ideal
	return clamp01(math.Exp(-(d * d) / (2 * s.params.Sigma * s.params.Sigma)))
}
