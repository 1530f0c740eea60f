package score

import (
	"fmt"

	"github.com/tdkit/tdselect/internal/model"
)

// HeuristicParams shape the statement-count curve: zero up to Floor, a
// linear rise to 1 at IdealLow, a plateau through IdealHigh, a linear decay
// to Tail at MaxStatements and Tail beyond.
type HeuristicParams struct {
	Floor               int
	IdealLow            int
	IdealHigh           int
	MaxStatements       int
	Tail                float64
	NoControlFlowFactor float64
}

// DefaultHeuristicParams returns the default curve.
func DefaultHeuristicParams() HeuristicParams {
	return HeuristicParams{
		Floor:               1,
		IdealLow:            8,
		IdealHigh:           20,
		MaxStatements:       60,
		Tail:                0.2,
		NoControlFlowFactor: 0.6,
	}
}

// Validate checks the breakpoints are ordered and the factors bounded.
func (p HeuristicParams) Validate() error {
	switch {
	case p.Floor < 0:
		return &ParamError{Scorer: NameHeuristic, Param: "floor", Reason: "must not be negative"}
	case p.IdealLow <= p.Floor:
		return &ParamError{Scorer: NameHeuristic, Param: "ideal_low", Reason: fmt.Sprintf("must exceed floor (%d)", p.Floor)}
	case p.IdealHigh < p.IdealLow:
		return &ParamError{Scorer: NameHeuristic, Param: "ideal_high", Reason: fmt.Sprintf("must be at least ideal_low (%d)", p.IdealLow)}
	case p.MaxStatements <= p.IdealHigh:
		return &ParamError{Scorer: NameHeuristic, Param: "max_statements", Reason: fmt.Sprintf("must exceed ideal_high (%d)", p.IdealHigh)}
	}
	if err := unitInterval(NameHeuristic, "tail", p.Tail); err != nil {
		return err
	}
	return unitInterval(NameHeuristic, "no_control_flow_factor", p.NoControlFlowFactor)
}

// HeuristicScorer rewards methods of a teachable size that contain control
// flow.
type HeuristicScorer struct {
	params HeuristicParams
}

// NewHeuristicScorer creates a heuristic scorer.
func NewHeuristicScorer(params HeuristicParams) *HeuristicScorer {
	return &HeuristicScorer{params: params}
}

// Name implements Scorer.
func (s *HeuristicScorer) Name() string { return NameHeuristic }

// Score implements Scorer.
func (s *HeuristicScorer) Score(p *model.Project) Records {
	out := make(Records, p.Len())
	for _, m := range p.Methods() {
		out[m.ID] = Record{
			Score: s.Compute(m.StatementCount, m.BranchCount),
			Inputs: []Input{
				{Name: "statementCount", Value: float64(m.StatementCount)},
				{Name: "branchCount", Value: float64(m.BranchCount)},
			},
		}
	}
	return out
}

// Compute scores a method with the given statement and branch counts.
func (s *HeuristicScorer) Compute(statements, branches int) float64 {
	p := s.params
	st := float64(statements)
	var v float64
	switch {
	case statements <= p.Floor:
		v = 0
	case statements < p.IdealLow:
		v = (st - float64(p.Floor)) / float64(p.IdealLow-p.Floor)
	case statements <= p.IdealHigh:
		v = 1
	case statements < p.MaxStatements:
		frac := (st - float64(p.IdealHigh)) / float64(p.MaxStatements-p.IdealHigh)
		v = 1 - (1-p.Tail)*frac
	default:
		v = p.Tail
	}
	if branches == 0 {
		v *= p.NoControlFlowFactor
	}
	return clamp01(v)
}
