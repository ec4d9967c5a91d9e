package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new sheetspec project",
	Long: `Initialize a new sheetspec project in the current directory.

This creates:
  - sheetspec.config.json  - Configuration file
  - example.css            - Example stylesheet
  - example.sheet.yaml     - Example test suite

Examples:
  sheetspec init
  sheetspec init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "sheetspec.config.json")
	sourceFile := filepath.Join(cwd, "example.css")
	suiteFile := filepath.Join(cwd, "example.sheet.yaml")

	if !forceInit {
		for _, f := range []string{configFile, sourceFile, suiteFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := &config.Config{
		ContainerSelector: ".test-output",
		Reporters:         []string{"console"},
		OutputDir:         ".sheetspec",
		HistoryDB:         filepath.Join(".sheetspec", "history.db"),
		Details:           config.BoolPtr(true),
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	sourceContent := `:root {
  --brand: #336699;
}

.btn {
  color: #336699;
  font-size: 16px;
  padding: 8px 16px;
}

.btn-danger {
  color: #cc3333;
}
`

	if err := os.WriteFile(sourceFile, []byte(sourceContent), 0644); err != nil {
		return fmt.Errorf("failed to create example stylesheet: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", sourceFile)

	suiteContent := `module: example
source: ./example.css
vars:
  brand: "#336699"

tests:
  - name: button uses the brand color
    tags: [smoke]
    assertions:
      - equal:
          of: decl(.btn, color)
          to: "{{brand}}"
          description: brand color applied
      - equal:
          of: decl(.btn, font-size)
          to: 16px

  - name: brand token matches the button color
    assertions:
      - equal:
          of: var(--brand)
          to: "{{brand}}"

  - name: danger button is styled
    assertions:
      - is-truthy: decl(.btn-danger, color)
      - output:
          from: .btn-danger
          contains: "color: #cc3333"
`

	if err := os.WriteFile(suiteFile, []byte(suiteContent), 0644); err != nil {
		return fmt.Errorf("failed to create example suite: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", suiteFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nsheetspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'sheetspec run example.sheet.yaml' to execute the example tests.\n")

	return nil
}
