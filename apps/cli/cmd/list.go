package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/core/parser"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List all tests in suite files",
	Long: `List all tests defined in *.sheet.yaml suite files.

Examples:
  sheetspec list buttons.sheet.yaml
  sheetspec list ./styles/`,
	Args: minimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no *.sheet.yaml files found")
	}

	for _, file := range files {
		suite, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s (module: %s):\n", file, suite.Module)
		for _, test := range suite.Tests {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%d assertions)\n", test.Name, len(test.Assertions))
			if len(test.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %v\n", test.Tags)
			}
			if test.Skip {
				if test.SkipReason != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    skipped: %s\n", test.SkipReason)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "    skipped\n")
				}
			}
		}
	}

	return nil
}
