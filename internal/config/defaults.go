package config

import (
	"github.com/tdkit/tdselect/internal/logging"
	"github.com/tdkit/tdselect/internal/output"
	"github.com/tdkit/tdselect/internal/rank"
	"github.com/tdkit/tdselect/internal/report"
	"github.com/tdkit/tdselect/internal/score"
)

// Default run parameters.
const (
	DefaultTop     = 15
	DefaultOutPath = "td-config.generated.yaml"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	h := score.DefaultHeuristicParams()
	c := score.DefaultComplexityParams()
	d := score.DefaultDependencyParams()
	t := score.DefaultTestSignalParams()
	return &Config{
		Analysis: AnalysisConfig{
			OutPath:       DefaultOutPath,
			Top:           DefaultTop,
			Mode:          rank.DefaultMode.String(),
			MinStatements: rank.DefaultMinStatements,
			Workers:       0,
			Exclude:       []string{},
		},
		Heuristic: HeuristicConfig{
			Floor:               h.Floor,
			IdealLow:            h.IdealLow,
			IdealHigh:           h.IdealHigh,
			MaxStatements:       h.MaxStatements,
			Tail:                h.Tail,
			NoControlFlowFactor: h.NoControlFlowFactor,
		},
		Complexity: ComplexityConfig{
			MaxComplexity: c.MaxComplexity,
		},
		Dependency: DependencyConfig{
			Ideal:       d.Ideal,
			Sigma:       d.Sigma,
			UnusedScore: d.UnusedScore,
		},
		TestSignal: TestSignalConfig{
			Scale: t.Scale,
		},
		Report: ReportConfig{
			FullCutThreshold: report.DefaultFullCutThreshold,
			Format:           output.DefaultFormat.String(),
		},
		Scan: ScanConfig{
			Exclude: []string{},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: logging.FormatText,
		},
	}
}

// Merge overlays override onto base. Non-zero override values take
// precedence; slices replace the base slice when non-empty.
// Returns a new Config with merged values.
func Merge(override, base *Config) *Config {
	result := *base

	result.Analysis = mergeAnalysisConfig(override.Analysis, base.Analysis)
	result.Heuristic = mergeHeuristicConfig(override.Heuristic, base.Heuristic)

	if override.Complexity.MaxComplexity != 0 {
		result.Complexity.MaxComplexity = override.Complexity.MaxComplexity
	}

	if override.Dependency.Ideal != 0 {
		result.Dependency.Ideal = override.Dependency.Ideal
	}
	if override.Dependency.Sigma != 0 {
		result.Dependency.Sigma = override.Dependency.Sigma
	}
	if override.Dependency.UnusedScore != 0 {
		result.Dependency.UnusedScore = override.Dependency.UnusedScore
	}

	if override.TestSignal.Scale != 0 {
		result.TestSignal.Scale = override.TestSignal.Scale
	}

	if override.Report.FullCutThreshold != 0 {
		result.Report.FullCutThreshold = override.Report.FullCutThreshold
	}
	if override.Report.Format != "" {
		result.Report.Format = override.Report.Format
	}

	if len(override.Scan.Exclude) > 0 {
		result.Scan.Exclude = override.Scan.Exclude
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

func mergeAnalysisConfig(override, base AnalysisConfig) AnalysisConfig {
	result := base

	if override.Input != "" {
		result.Input = override.Input
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.OutPath != "" {
		result.OutPath = override.OutPath
	}
	if override.OutDB != "" {
		result.OutDB = override.OutDB
	}
	if override.Top != 0 {
		result.Top = override.Top
	}
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.MinStatements != 0 {
		result.MinStatements = override.MinStatements
	}
	if override.Workers != 0 {
		result.Workers = override.Workers
	}
	if len(override.Exclude) > 0 {
		result.Exclude = override.Exclude
	}

	return result
}

func mergeHeuristicConfig(override, base HeuristicConfig) HeuristicConfig {
	result := base

	if override.Floor != 0 {
		result.Floor = override.Floor
	}
	if override.IdealLow != 0 {
		result.IdealLow = override.IdealLow
	}
	if override.IdealHigh != 0 {
		result.IdealHigh = override.IdealHigh
	}
	if override.MaxStatements != 0 {
		result.MaxStatements = override.MaxStatements
	}
	if override.Tail != 0 {
		result.Tail = override.Tail
	}
	if override.NoControlFlowFactor != 0 {
		result.NoControlFlowFactor = override.NoControlFlowFactor
	}

	return result
}
