// Package cmd contains all CLI commands for tdselect.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tdkit/tdselect/internal/config"
	"github.com/tdkit/tdselect/internal/logging"
	"github.com/tdkit/tdselect/internal/mcp"
)

var (
	// Version is the current version of tdselect
	Version = "0.1.0"

	// Global flags
	verbose    int
	quiet      bool
	configPath string
	logFormat  string
	forAgents  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tdselect",
	Short: "Select Java methods for fill-in-the-blank exercises",
	Long: `tdselect analyzes a Java source tree and ranks its methods by how well they
suit a fill-in-the-blank exercise: meaningful but not trivial, moderately
connected to the rest of the code, and ideally covered by existing tests.

The result is an exercise configuration (td-config.generated.yaml by default)
listing the selected methods, their score breakdown and how much of each body
to cut. A scaffold generator consumes that file.

Configuration layers, lowest precedence first:
  1. built-in defaults
  2. tdselect.yaml in the input root (or --config)
  3. TDSELECT_* environment variables, e.g. TDSELECT_ANALYSIS_TOP=10
  4. command-line flags

Examples:
  tdselect analyze --input ./bank                 # Rank with defaults
  tdselect analyze --input ./bank --mode any      # Keep accessors
  tdselect modes                                  # List weighting presets
  tdselect init ./bank                            # Write a default tdselect.yaml
  tdselect serve                                  # MCP server on stdio

See 'tdselect <command> --help' for command-specific options.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "tdselect:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress all logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: <input>/tdselect.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text|json)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// loadConfig resolves the file layer: --config when given, otherwise
// tdselect.yaml in the input root, or in the working directory when the
// input comes from the file or the environment.
func loadConfig(inputRoot string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	if inputRoot == "" {
		inputRoot = "."
	}
	return config.Load(inputRoot)
}

// newLogger builds the stderr logger from the logging section and the
// global verbosity flags.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if !logging.ValidFormat(cfg.Logging.Format) {
		return nil, &config.ConfigError{Field: "logging.format", Value: cfg.Logging.Format, Reason: "expected text or json"}
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, &config.ConfigError{Field: "logging.level", Value: cfg.Logging.Level, Reason: err.Error()}
	}
	level = logging.LevelFromVerbosity(verbose, quiet, level)
	return logging.NewLogger(cmd.ErrOrStderr(), level, cfg.Logging.Format), nil
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	out := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}
	if srv, err := mcp.New(mcp.Config{Version: Version}); err == nil {
		out["mcp_tools"] = srv.GetToolSchemas()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden && sub.Name() != "help" && sub.Name() != "completion" {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
