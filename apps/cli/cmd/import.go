package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/scaffold"
)

var (
	importOutputFlag string
	importModuleFlag string
	importForceFlag  bool
)

var importCmd = &cobra.Command{
	Use:   "import <stylesheet.css>",
	Short: "Generate a suite skeleton from an existing stylesheet",
	Long: `Generate a *.sheet.yaml suite skeleton that pins the current
declarations of an existing stylesheet.

The generated suite asserts today's values, which gives an untested
stylesheet an instant regression net. Prune it down to the rules worth
keeping.

Examples:
  sheetspec import styles.css
  sheetspec import styles.css -o styles.sheet.yaml
  sheetspec import styles.css --module buttons`,
	Args: exactArgs(1),
	RunE: importCommand,
}

func init() {
	importCmd.Flags().StringVarP(&importOutputFlag, "output", "o", "", "Write the suite to a file instead of stdout")
	importCmd.Flags().StringVar(&importModuleFlag, "module", "", "Module name (default: derived from the file name)")
	importCmd.Flags().BoolVarP(&importForceFlag, "force", "f", false, "Overwrite an existing output file")
}

func importCommand(cmd *cobra.Command, args []string) error {
	var opts []scaffold.Option
	if importModuleFlag != "" {
		opts = append(opts, scaffold.WithModule(importModuleFlag))
	}

	suite, err := scaffold.NewGenerator(opts...).ConvertFile(args[0])
	if err != nil {
		return err
	}

	if importOutputFlag == "" {
		fmt.Fprint(cmd.OutOrStdout(), suite)
		return nil
	}

	if !importForceFlag {
		if _, err := os.Stat(importOutputFlag); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", importOutputFlag)
		}
	}
	if err := os.WriteFile(importOutputFlag, []byte(suite), 0644); err != nil {
		return fmt.Errorf("failed to write suite: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", importOutputFlag)
	return nil
}
