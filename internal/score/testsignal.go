package score

import (
	"math"

	"github.com/tdkit/tdselect/internal/model"
)

// TestSignalParams control how fast test references saturate.
type TestSignalParams struct {
	Scale float64
}

// DefaultTestSignalParams saturates at about three references.
func DefaultTestSignalParams() TestSignalParams {
	return TestSignalParams{Scale: 1}
}

// Validate requires a positive scale.
func (p TestSignalParams) Validate() error {
	if math.IsNaN(p.Scale) || p.Scale <= 0 {
		return &ParamError{Scorer: NameTestSignal, Param: "scale", Reason: "must be positive"}
	}
	return nil
}

// TestSignalScorer rewards methods already exercised by tests, so a
// re-implementation can be checked.
type TestSignalScorer struct {
	params TestSignalParams
}

// NewTestSignalScorer creates a test signal scorer.
func NewTestSignalScorer(params TestSignalParams) *TestSignalScorer {
	return &TestSignalScorer{params: params}
}

// Name implements Scorer.
func (s *TestSignalScorer) Name() string { return NameTestSignal }

// Score implements Scorer.
func (s *TestSignalScorer) Score(p *model.Project) Records {
	out := make(Records, p.Len())
	for _, m := range p.Methods() {
		out[m.ID] = Record{
			Score: s.Compute(m.TestReferences),
			Inputs: []Input{
				{Name: "testReferences", Value: float64(m.TestReferences)},
				{Name: "testFiles", Value: float64(m.TestFiles)},
			},
		}
	}
	return out
}

// Compute scores a reference count.
func (s *TestSignalScorer) Compute(refs int) float64 {
	if refs <= 0 {
		return 0
	}
	return clamp01(1 - math.Exp(-float64(refs)/s.params.Scale))
}
