// Package report builds the exercise configuration document from a ranked
// candidate list and writes it to disk.
//
// The document is the hand-off to the scaffold generator: it names every
// selected method, its score breakdown and how much of its body to cut.
// Building is a pure function of the candidates and the Project, so the
// same inputs always produce byte-identical output.
package report

// Cut kinds.
const (
	CutFull    = "full"
	CutPartial = "partial"
)

// DefaultFullCutThreshold is the composite score from which a method body
// is removed entirely.
const DefaultFullCutThreshold = 0.30

// Report is the top-level exercise configuration document.
type Report struct {
	// Input is the analyzed source root.
	Input string `yaml:"input" json:"input"`

	// Output is the scaffold destination, passed through untouched.
	Output string `yaml:"output" json:"output"`

	Mode string `yaml:"mode" json:"mode"`

	// TotalCandidates counts eligible methods before the top-N cut.
	TotalCandidates int `yaml:"totalCandidates" json:"totalCandidates"`

	// Fingerprint identifies the selection; equal selections share it.
	Fingerprint string `yaml:"fingerprint" json:"fingerprint"`

	Methods []MethodEntry `yaml:"methods" json:"methods"`

	IgnoreMissingMethods bool     `yaml:"ignoreMissingMethods" json:"ignoreMissingMethods"`
	Exclude              []string `yaml:"exclude" json:"exclude"`

	// Warnings are "<file>: <message>" lines for files skipped or parsed
	// with errors.
	Warnings []string `yaml:"warnings" json:"warnings"`
}

// MethodEntry is one selected method.
type MethodEntry struct {
	ID             string         `yaml:"id" json:"id"`
	ClassName      string         `yaml:"className" json:"className"`
	Signature      string         `yaml:"signature" json:"signature"`
	File           string         `yaml:"file" json:"file"`
	Rank           int            `yaml:"rank" json:"rank"`
	CompositeScore float64        `yaml:"compositeScore" json:"compositeScore"`
	Scores         ScoreBreakdown `yaml:"scores" json:"scores"`
	Inputs         InputBreakdown `yaml:"inputs" json:"inputs"`
	Cut            string         `yaml:"cut" json:"cut"`
	KeepStatements int            `yaml:"keepStatements,omitempty" json:"keepStatements,omitempty"`
}

// ScoreBreakdown holds the four dimension scores.
type ScoreBreakdown struct {
	Heuristic  float64 `yaml:"heuristic" json:"heuristic"`
	Complexity float64 `yaml:"complexity" json:"complexity"`
	Dependency float64 `yaml:"dependency" json:"dependency"`
	TestSignal float64 `yaml:"testSignal" json:"testSignal"`
}

// InputBreakdown holds the raw facts behind the scores.
type InputBreakdown struct {
	StatementCount int `yaml:"statementCount" json:"statementCount"`
	BranchCount    int `yaml:"branchCount" json:"branchCount"`
	Complexity     int `yaml:"complexity" json:"complexity"`
	FanIn          int `yaml:"fanIn" json:"fanIn"`
	TestReferences int `yaml:"testReferences" json:"testReferences"`
}
