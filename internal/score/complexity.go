package score

import (
	"github.com/tdkit/tdselect/internal/model"
)

// ComplexityParams configure the complexity scorer. A MaxComplexity of zero
// normalizes against the most complex method of the project.
type ComplexityParams struct {
	MaxComplexity int
}

// DefaultComplexityParams returns project-relative normalization.
func DefaultComplexityParams() ComplexityParams {
	return ComplexityParams{}
}

// Validate rejects a negative bound.
func (p ComplexityParams) Validate() error {
	if p.MaxComplexity < 0 {
		return &ParamError{Scorer: NameComplexity, Param: "max_complexity", Reason: "must not be negative"}
	}
	return nil
}

// ComplexityScorer scores the cyclomatic complexity proxy 1 + branches.
type ComplexityScorer struct {
	params ComplexityParams
}

// NewComplexityScorer creates a complexity scorer.
func NewComplexityScorer(params ComplexityParams) *ComplexityScorer {
	return &ComplexityScorer{params: params}
}

// Name implements Scorer.
func (s *ComplexityScorer) Name() string { return NameComplexity }

// Score implements Scorer.
func (s *ComplexityScorer) Score(p *model.Project) Records {
	methods := p.Methods()
	limit := s.params.MaxComplexity
	if limit <= 0 {
		limit = 1
		for _, m := range methods {
			if c := m.Complexity(); c > limit {
				limit = c
			}
		}
	}

	out := make(Records, len(methods))
	for _, m := range methods {
		c := m.Complexity()
		out[m.ID] = Record{
			Score: clamp01(float64(c) / float64(limit)),
			Inputs: []Input{
				{Name: "complexity", Value: float64(c)},
				{Name: "max", Value: float64(limit)},
			},
		}
	}
	return out
}
