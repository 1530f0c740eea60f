package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdkit/tdselect/internal/analysis"
	"github.com/tdkit/tdselect/internal/config"
	"github.com/tdkit/tdselect/internal/output"
)

var (
	analyzeInput   string
	analyzeOutput  string
	analyzeTop     int
	analyzeMode    string
	analyzeOutYAML string
	analyzeFormat  string
	analyzeOutDB   string
	analyzeWorkers int
	analyzeExclude []string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank the methods of a Java tree and write the exercise config",
	Long: `Scan a Java source tree, score every method with the four scorers, rank
them under the selected mode and write the top N to the exercise config.

Flags override tdselect.yaml and TDSELECT_* environment variables. Parse
problems in individual files are reported as warnings; a missing source
root or an invalid configuration is fatal and nothing is written.`,
	Example: `  tdselect analyze --input ./bank
  tdselect analyze --input ./bank --top 5 --mode algorithmic
  tdselect analyze --input ./bank --out-yaml out.json
  tdselect analyze --input ./bank --exclude 'ca.example.bank.Bank#audit()'
  tdselect analyze --input ./bank --out-db run.db`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Java project root to analyze (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "Scaffold destination, passed through to the report")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", config.DefaultTop, "Number of methods to select")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "business", "Weighting mode (see 'tdselect modes')")
	analyzeCmd.Flags().StringVar(&analyzeOutYAML, "out-yaml", config.DefaultOutPath, "Path of the generated exercise config")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Report format (yaml|json, default from --out-yaml extension)")
	analyzeCmd.Flags().StringVar(&analyzeOutDB, "out-db", "", "Also export the run to this SQLite file")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Parse workers (0 = number of CPUs)")
	analyzeCmd.Flags().StringArrayVar(&analyzeExclude, "exclude", nil, "Method id to leave out (repeatable)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(analyzeInput)
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cmd, cfg)

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	res, err := analysis.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", displayInput(cfg.Analysis.Input), err)
	}
	if err := analysis.WriteOutputs(cfg, res, Version, logger); err != nil {
		return fmt.Errorf("analyze %s: %w", displayInput(cfg.Analysis.Input), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d methods, %d eligible, selected %d (mode %s)\n",
		res.Stats.Indexed, res.Stats.Eligible, len(res.Candidates), res.Report.Mode)
	fmt.Fprintf(out, "Call graph: %d edges, %d cycles, max fan-in %d\n",
		res.Graph.Edges, res.Graph.Cycles, res.Graph.MaxInDegree)
	if len(res.Stats.Excluded) > 0 {
		fmt.Fprintf(out, "Excluded: %s\n", formatExcluded(res.Stats.Excluded))
	}
	if n := len(res.Report.Warnings); n > 0 {
		fmt.Fprintf(out, "Warnings: %d\n", n)
	}
	fmt.Fprintf(out, "Wrote %s\n", cfg.Analysis.OutPath)
	if cfg.Analysis.OutDB != "" {
		fmt.Fprintf(out, "Exported %s\n", cfg.Analysis.OutDB)
	}
	return nil
}

// applyAnalyzeFlags copies explicitly set flags onto cfg. Unset flags leave
// the file and environment layers alone.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Analysis.Input = analyzeInput
	}
	if flags.Changed("output") {
		cfg.Analysis.Output = analyzeOutput
	}
	if flags.Changed("top") {
		cfg.Analysis.Top = analyzeTop
	}
	if flags.Changed("mode") {
		cfg.Analysis.Mode = analyzeMode
	}
	if flags.Changed("out-yaml") {
		cfg.Analysis.OutPath = analyzeOutYAML
	}
	if flags.Changed("out-db") {
		cfg.Analysis.OutDB = analyzeOutDB
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = analyzeWorkers
	}
	if flags.Changed("exclude") {
		cfg.Analysis.Exclude = append([]string(nil), analyzeExclude...)
	}

	switch {
	case flags.Changed("format"):
		cfg.Report.Format = analyzeFormat
		// td-config.generated.yaml becomes td-config.generated.json
		if f, err := output.ParseFormat(analyzeFormat); err == nil && cfg.Analysis.OutPath == config.DefaultOutPath {
			cfg.Analysis.OutPath = strings.TrimSuffix(config.DefaultOutPath, filepath.Ext(config.DefaultOutPath)) + f.Extension()
		}
	case flags.Changed("out-yaml"):
		cfg.Report.Format = string(output.FormatForPath(analyzeOutYAML))
	}
}

func formatExcluded(excluded map[string]int) string {
	reasons := make([]string, 0, len(excluded))
	for reason := range excluded {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, excluded[reason]))
	}
	return strings.Join(parts, ", ")
}

func displayInput(input string) string {
	if input == "" {
		return "<no input>"
	}
	return input
}
