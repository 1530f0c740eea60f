package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdkit/tdselect/internal/config"
	"github.com/tdkit/tdselect/internal/mcp"
)

var serveTimeout time.Duration

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing:

  tdselect_analyze   rank a Java tree and return the report
  tdselect_modes     list the weighting modes

Nothing is written to disk; the report is returned in the tool result.
With --config every request is layered over that file, otherwise over the
tdselect.yaml of the requested input root. Logs go to stderr.`,
	Example: `  tdselect serve
  tdselect serve --timeout 30m
  tdselect serve --config ./tdselect.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Exit after this much inactivity (0 = never)")
}

func runServe(cmd *cobra.Command, args []string) error {
	var base *config.Config
	logCfg := config.DefaultConfig()
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return err
		}
		base = cfg
		logCfg = cfg
	}

	logger, err := newLogger(cmd, logCfg)
	if err != nil {
		return err
	}

	srv, err := mcp.New(mcp.Config{
		Base:    base,
		Logger:  logger,
		Version: Version,
		Timeout: serveTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("mcp server starting", "tools", srv.ListTools(), "timeout", serveTimeout.String())
	return srv.ServeStdio()
}
