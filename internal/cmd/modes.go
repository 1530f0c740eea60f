package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tdkit/tdselect/internal/output"
	"github.com/tdkit/tdselect/internal/rank"
)

var modesFormat string

// modesCmd represents the modes command
var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the weighting modes",
	Long: `List every weighting mode with its scorer weights and whether it drops
accessors. Pass one of the names to 'tdselect analyze --mode'.`,
	Example: `  tdselect modes
  tdselect modes --format json`,
	Args: cobra.NoArgs,
	RunE: runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
	modesCmd.Flags().StringVar(&modesFormat, "format", "yaml", "Output format (yaml|json)")
}

func runModes(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(modesFormat)
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), map[string][]rank.Info{"modes": rank.Describe()})
}
