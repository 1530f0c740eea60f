package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tdkit/tdselect/internal/config"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default tdselect.yaml",
	Long: `Write tdselect.yaml with every default value into dir (the current
directory when omitted). An existing file is kept unless --force is given.`,
	Example: `  tdselect init
  tdselect init ./bank
  tdselect init ./bank --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing tdselect.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if initForce {
		existing := filepath.Join(dir, config.ConfigFileName)
		if err := os.Remove(existing); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", existing, err)
		}
	}

	path, err := config.SaveDefault(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
