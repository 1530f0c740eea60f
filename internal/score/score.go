// Package score computes the four independent scoring dimensions of a
// method: heuristic size, complexity, dependency and test signal.
//
// Every scorer reads the frozen Method Index only and returns one Record per
// indexed method with a score in [0,1] and the raw inputs behind it, so the
// scorers can run concurrently.
package score

import (
	"fmt"
	"math"

	"github.com/tdkit/tdselect/internal/model"
)

// Scorer names, also used as report keys.
const (
	NameHeuristic  = "heuristic"
	NameComplexity = "complexity"
	NameDependency = "dependency"
	NameTestSignal = "testSignal"
)

// Input is one named raw value behind a score.
type Input struct {
	Name  string
	Value float64
}

// Record is the outcome of one scorer for one method.
type Record struct {
	Score  float64
	Inputs []Input
}

// Input returns the named raw input.
func (r Record) Input(name string) (float64, bool) {
	for _, in := range r.Inputs {
		if in.Name == name {
			return in.Value, true
		}
	}
	return 0, false
}

// Records maps method ids to records.
type Records map[string]Record

// Scorer scores every method of a project.
type Scorer interface {
	Name() string
	Score(p *model.Project) Records
}

// ParamError reports an invalid scorer parameter.
type ParamError struct {
	Scorer string
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Scorer, e.Param, e.Reason)
}

// clamp01 bounds x to [0,1]; NaN becomes 0.
func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

func unitInterval(scorer, param string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &ParamError{Scorer: scorer, Param: param, Reason: fmt.Sprintf("must be within [0,1], got %g", v)}
	}
	return nil
}
