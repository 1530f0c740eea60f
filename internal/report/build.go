package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/rank"
)

// fingerprintNamespace scopes selection fingerprints.
var fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tdkit/tdselect/selection"))

// Options carry the run context echoed into the document.
type Options struct {
	Input           string
	Output          string
	Mode            rank.Mode
	TotalCandidates int
	// FullCutThreshold defaults to DefaultFullCutThreshold when zero.
	FullCutThreshold float64
	Warnings         []string
}

// Build assembles the report for the ranked candidates. Candidates missing
// from p are skipped.
func Build(p *model.Project, candidates []rank.Candidate, opts Options) *Report {
	threshold := opts.FullCutThreshold
	if threshold <= 0 {
		threshold = DefaultFullCutThreshold
	}

	r := &Report{
		Input:           opts.Input,
		Output:          opts.Output,
		Mode:            opts.Mode.String(),
		TotalCandidates: opts.TotalCandidates,
		Methods:         make([]MethodEntry, 0, len(candidates)),
		Exclude:         []string{},
		Warnings:        append([]string{}, opts.Warnings...),
	}

	for _, c := range candidates {
		m, ok := p.Method(c.ID)
		if !ok {
			continue
		}
		composite := round4(c.CompositeScore)
		entry := MethodEntry{
			ID:             m.ID,
			ClassName:      m.ClassName,
			Signature:      m.Signature,
			File:           m.File,
			Rank:           c.Rank,
			CompositeScore: composite,
			Scores: ScoreBreakdown{
				Heuristic:  round4(c.Scores.Heuristic),
				Complexity: round4(c.Scores.Complexity),
				Dependency: round4(c.Scores.Dependency),
				TestSignal: round4(c.Scores.TestSignal),
			},
			Inputs: InputBreakdown{
				StatementCount: m.StatementCount,
				BranchCount:    m.BranchCount,
				Complexity:     m.Complexity(),
				FanIn:          m.FanIn(),
				TestReferences: m.TestReferences,
			},
		}
		entry.Cut, entry.KeepStatements = Cut(composite, threshold)
		r.Methods = append(r.Methods, entry)
	}

	r.Fingerprint = fingerprint(r)
	return r
}

// Cut decides how much of a method body the exercise removes. Scores at
// or above threshold cut the whole body; lower scores keep between one and
// five leading statements, more for higher scores.
func Cut(composite, threshold float64) (string, int) {
	if composite >= threshold {
		return CutFull, 0
	}
	f := composite / threshold
	switch {
	case f < 1.0/6:
		return CutPartial, 1
	case f < 2.0/6:
		return CutPartial, 2
	case f < 4.0/6:
		return CutPartial, 3
	case f < 5.0/6:
		return CutPartial, 4
	default:
		return CutPartial, 5
	}
}

func fingerprint(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s\n", r.Mode)
	for _, m := range r.Methods {
		fmt.Fprintf(&b, "%d %s %.4f %s %d\n", m.Rank, m.ID, m.CompositeScore, m.Cut, m.KeepStatements)
	}
	return uuid.NewSHA1(fingerprintNamespace, []byte(b.String())).String()
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
