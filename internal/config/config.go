package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tdkit/tdselect/internal/exclude"
	"github.com/tdkit/tdselect/internal/logging"
	"github.com/tdkit/tdselect/internal/output"
	"github.com/tdkit/tdselect/internal/rank"
	"github.com/tdkit/tdselect/internal/score"
)

// ConfigFileName is the configuration file looked up in the input root.
const ConfigFileName = "tdselect.yaml"

// EnvPrefix prefixes environment overrides, e.g. TDSELECT_ANALYSIS_TOP.
const EnvPrefix = "TDSELECT"

// Config holds all tdselect configuration
type Config struct {
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	Heuristic  HeuristicConfig  `yaml:"heuristic" mapstructure:"heuristic"`
	Complexity ComplexityConfig `yaml:"complexity" mapstructure:"complexity"`
	Dependency DependencyConfig `yaml:"dependency" mapstructure:"dependency"`
	TestSignal TestSignalConfig `yaml:"test_signal" mapstructure:"test_signal"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// AnalysisConfig holds the run parameters
type AnalysisConfig struct {
	Input         string   `yaml:"input,omitempty" mapstructure:"input"`
	Output        string   `yaml:"output,omitempty" mapstructure:"output"`
	OutPath       string   `yaml:"out_yaml" mapstructure:"out_yaml"`
	OutDB         string   `yaml:"out_db,omitempty" mapstructure:"out_db"`
	Top           int      `yaml:"top" mapstructure:"top"`
	Mode          string   `yaml:"mode" mapstructure:"mode"`
	MinStatements int      `yaml:"min_statements" mapstructure:"min_statements"`
	Workers       int      `yaml:"workers" mapstructure:"workers"`
	Exclude       []string `yaml:"exclude" mapstructure:"exclude"`
}

// HeuristicConfig holds the statement-count curve
type HeuristicConfig struct {
	Floor               int     `yaml:"floor" mapstructure:"floor"`
	IdealLow            int     `yaml:"ideal_low" mapstructure:"ideal_low"`
	IdealHigh           int     `yaml:"ideal_high" mapstructure:"ideal_high"`
	MaxStatements       int     `yaml:"max_statements" mapstructure:"max_statements"`
	Tail                float64 `yaml:"tail" mapstructure:"tail"`
	NoControlFlowFactor float64 `yaml:"no_control_flow_factor" mapstructure:"no_control_flow_factor"`
}

// ComplexityConfig holds the complexity normalization
type ComplexityConfig struct {
	// MaxComplexity of 0 normalizes against the project maximum.
	MaxComplexity int `yaml:"max_complexity" mapstructure:"max_complexity"`
}

// DependencyConfig holds the fan-in bell curve
type DependencyConfig struct {
	Ideal       float64 `yaml:"ideal" mapstructure:"ideal"`
	Sigma       float64 `yaml:"sigma" mapstructure:"sigma"`
	UnusedScore float64 `yaml:"unused_score" mapstructure:"unused_score"`
}

// TestSignalConfig holds the test reference saturation
type TestSignalConfig struct {
	Scale float64 `yaml:"scale" mapstructure:"scale"`
}

// ReportConfig holds report rendering options
type ReportConfig struct {
	FullCutThreshold float64 `yaml:"full_cut_threshold" mapstructure:"full_cut_threshold"`
	Format           string  `yaml:"format" mapstructure:"format"`
}

// ScanConfig holds source discovery options
type ScanConfig struct {
	// Exclude holds glob patterns relative to the input root.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// LoggingConfig holds logger options
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ErrInvalidConfig is matched by every ConfigError
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports one invalid configuration value.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Load reads <inputRoot>/tdselect.yaml when present, layered over defaults
// and under TDSELECT_* environment variables. The result is not validated,
// since flags still apply on top.
func Load(inputRoot string) (*Config, error) {
	path := filepath.Join(inputRoot, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return load("")
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return load(path)
}

// LoadFromPath reads config from a specific path. A missing file is an
// error; use Load for optional lookup.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("analysis.input", d.Analysis.Input)
	v.SetDefault("analysis.output", d.Analysis.Output)
	v.SetDefault("analysis.out_yaml", d.Analysis.OutPath)
	v.SetDefault("analysis.out_db", d.Analysis.OutDB)
	v.SetDefault("analysis.top", d.Analysis.Top)
	v.SetDefault("analysis.mode", d.Analysis.Mode)
	v.SetDefault("analysis.min_statements", d.Analysis.MinStatements)
	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.exclude", d.Analysis.Exclude)

	v.SetDefault("heuristic.floor", d.Heuristic.Floor)
	v.SetDefault("heuristic.ideal_low", d.Heuristic.IdealLow)
	v.SetDefault("heuristic.ideal_high", d.Heuristic.IdealHigh)
	v.SetDefault("heuristic.max_statements", d.Heuristic.MaxStatements)
	v.SetDefault("heuristic.tail", d.Heuristic.Tail)
	v.SetDefault("heuristic.no_control_flow_factor", d.Heuristic.NoControlFlowFactor)

	v.SetDefault("complexity.max_complexity", d.Complexity.MaxComplexity)

	v.SetDefault("dependency.ideal", d.Dependency.Ideal)
	v.SetDefault("dependency.sigma", d.Dependency.Sigma)
	v.SetDefault("dependency.unused_score", d.Dependency.UnusedScore)

	v.SetDefault("test_signal.scale", d.TestSignal.Scale)

	v.SetDefault("report.full_cut_threshold", d.Report.FullCutThreshold)
	v.SetDefault("report.format", d.Report.Format)

	v.SetDefault("scan.exclude", d.Scan.Exclude)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Validate checks that config values are valid. Every failure is a
// *ConfigError.
func Validate(cfg *Config) error {
	a := cfg.Analysis
	if strings.TrimSpace(a.Input) == "" {
		return &ConfigError{Field: "analysis.input", Value: a.Input, Reason: "input path is required"}
	}
	if a.Top <= 0 {
		return &ConfigError{Field: "analysis.top", Value: a.Top, Reason: "must be positive"}
	}
	if _, err := rank.ParseMode(a.Mode); err != nil {
		return &ConfigError{Field: "analysis.mode", Value: a.Mode, Reason: err.Error()}
	}
	if a.MinStatements < 0 {
		return &ConfigError{Field: "analysis.min_statements", Value: a.MinStatements, Reason: "must not be negative"}
	}
	if a.Workers < 0 {
		return &ConfigError{Field: "analysis.workers", Value: a.Workers, Reason: "must not be negative"}
	}
	if strings.TrimSpace(a.OutPath) == "" {
		return &ConfigError{Field: "analysis.out_yaml", Value: a.OutPath, Reason: "report path is required"}
	}

	for _, check := range []struct {
		prefix string
		err    error
	}{
		{"heuristic", cfg.HeuristicParams().Validate()},
		{"complexity", cfg.ComplexityParams().Validate()},
		{"dependency", cfg.DependencyParams().Validate()},
		{"test_signal", cfg.TestSignalParams().Validate()},
	} {
		if check.err == nil {
			continue
		}
		var pe *score.ParamError
		if errors.As(check.err, &pe) {
			return &ConfigError{Field: check.prefix + "." + pe.Param, Value: paramValue(cfg, check.prefix, pe.Param), Reason: pe.Reason}
		}
		return &ConfigError{Field: check.prefix, Reason: check.err.Error()}
	}

	if t := cfg.Report.FullCutThreshold; t <= 0 || t > 1 {
		return &ConfigError{Field: "report.full_cut_threshold", Value: t, Reason: "must be within (0,1]"}
	}
	if _, err := output.ParseFormat(cfg.Report.Format); err != nil {
		return &ConfigError{Field: "report.format", Value: cfg.Report.Format, Reason: err.Error()}
	}
	if _, err := exclude.NewMatcher(cfg.Scan.Exclude); err != nil {
		return &ConfigError{Field: "scan.exclude", Value: cfg.Scan.Exclude, Reason: err.Error()}
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Value: cfg.Logging.Level, Reason: err.Error()}
	}
	if !logging.ValidFormat(cfg.Logging.Format) {
		return &ConfigError{Field: "logging.format", Value: cfg.Logging.Format, Reason: "expected text or json"}
	}
	return nil
}

func paramValue(cfg *Config, prefix, param string) interface{} {
	values := map[string]interface{}{
		"heuristic.floor":                  cfg.Heuristic.Floor,
		"heuristic.ideal_low":              cfg.Heuristic.IdealLow,
		"heuristic.ideal_high":             cfg.Heuristic.IdealHigh,
		"heuristic.max_statements":         cfg.Heuristic.MaxStatements,
		"heuristic.tail":                   cfg.Heuristic.Tail,
		"heuristic.no_control_flow_factor": cfg.Heuristic.NoControlFlowFactor,
		"complexity.max_complexity":        cfg.Complexity.MaxComplexity,
		"dependency.ideal":                 cfg.Dependency.Ideal,
		"dependency.sigma":                 cfg.Dependency.Sigma,
		"dependency.unused_score":          cfg.Dependency.UnusedScore,
		"test_signal.scale":                cfg.TestSignal.Scale,
	}
	return values[prefix+"."+param]
}

// HeuristicParams converts the heuristic section.
func (c *Config) HeuristicParams() score.HeuristicParams {
	return score.HeuristicParams{
		Floor:               c.Heuristic.Floor,
		IdealLow:            c.Heuristic.IdealLow,
		IdealHigh:           c.Heuristic.IdealHigh,
		MaxStatements:       c.Heuristic.MaxStatements,
		Tail:                c.Heuristic.Tail,
		NoControlFlowFactor: c.Heuristic.NoControlFlowFactor,
	}
}

// ComplexityParams converts the complexity section.
func (c *Config) ComplexityParams() score.ComplexityParams {
	return score.ComplexityParams{MaxComplexity: c.Complexity.MaxComplexity}
}

// DependencyParams converts the dependency section.
func (c *Config) DependencyParams() score.DependencyParams {
	return score.DependencyParams{
		Ideal:       c.Dependency.Ideal,
		Sigma:       c.Dependency.Sigma,
		UnusedScore: c.Dependency.UnusedScore,
	}
}

// TestSignalParams converts the test signal section.
func (c *Config) TestSignalParams() score.TestSignalParams {
	return score.TestSignalParams{Scale: c.TestSignal.Scale}
}

// SaveDefault writes the default configuration to dir/tdselect.yaml.
// An existing file is never overwritten.
func SaveDefault(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s exists but is not a directory", dir)
	}

	configPath := filepath.Join(dir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# tdselect configuration\n# Values here are overridden by TDSELECT_* environment variables and flags.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
