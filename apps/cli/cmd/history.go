package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/core/config"
	"github.com/sheetspec/sheetspec/packages/history"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs and the current green streak",
	Long: `Show recent runs from the history database.

Runs are recorded by 'sheetspec run --history'.

Examples:
  sheetspec history
  sheetspec history --limit 20`,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "history-db", getEnvString("SHEETSPEC_HISTORY_DB", ""), "Path to the history database (env: SHEETSPEC_HISTORY_DB)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", getEnvInt("SHEETSPEC_HISTORY_LIMIT", 10), "Number of runs to show (env: SHEETSPEC_HISTORY_LIMIT)")
}

// resolveHistoryDB picks the history database path: flag first, then
// the config file, then the default under .sheetspec.
func resolveHistoryDB(flagValue string, fileConfig *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if fileConfig != nil && fileConfig.HistoryDB != "" {
		return fileConfig.HistoryDB
	}
	return filepath.Join(".sheetspec", "history.db")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.FindAndLoadConfig(".")
	if err != nil {
		return &configError{fmt.Errorf("loading config: %w", err)}
	}
	dbPath := resolveHistoryDB(historyDBFlag, fileConfig)

	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No run history at %s\n", dbPath)
		return nil
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return &configError{err}
	}
	defer store.Close()

	runs, err := store.Recent(historyLimitFlag)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded yet.\n")
		return nil
	}

	streak, err := store.Streak()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRecent runs (%s):\n\n", dbPath)
	for _, run := range runs {
		symbol := "✓"
		if !run.Green() {
			symbol = "✗"
		}
		fmt.Fprintf(out, "  %s %s  %d files, %d tests: %d passed, %d failed, %d skipped (%dms)\n",
			symbol,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Files, run.Tests, run.Passed, run.Failed, run.Skipped,
			run.Duration.Milliseconds())
	}

	fmt.Fprintf(out, "\nGreen streak: %d consecutive passing runs\n", streak)

	return nil
}
