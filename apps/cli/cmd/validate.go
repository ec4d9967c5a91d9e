package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/core/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>",
	Short: "Validate suite files without evaluating them",
	Long: `Validate *.sheet.yaml suite files against the suite schema and the
parser without evaluating any assertions.

Examples:
  sheetspec validate buttons.sheet.yaml
  sheetspec validate ./styles/`,
	Args: minimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no *.sheet.yaml files found")
	}

	hasErrors := false
	for _, file := range files {
		if err := validateFile(file); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if hasErrors {
		return &parser.ParseError{Message: "validation failed"}
	}

	return nil
}

// validateFile checks one suite against the schema first, which reports
// every violation at once, then against the parser for the structural
// checks the schema cannot express.
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := parser.ValidateSchema(data); err != nil {
		return err
	}
	_, err = parser.Parse(data, path)
	return err
}
