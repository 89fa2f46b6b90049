package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/neuroflap/internal/platform/tui"
	"github.com/vovakirdan/neuroflap/internal/storage"
)

var (
	flagHistoryPlain bool
	flagHistoryClear string
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Browse recorded training runs",
	Long: `Show the generations recorded for each training run.

In a terminal an interactive browser is started; with --plain, or when
output is not a terminal, a summary is printed instead.

Examples:
  neuroflap history
  neuroflap history --plain
  neuroflap history run-20260101-120000 --plain
  neuroflap history --clear run-20260101-120000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print text instead of the interactive browser")
	historyCmd.Flags().StringVar(&flagHistoryClear, "clear", "", "Delete a run's generations and champions")
}

func runHistory(_ *cobra.Command, args []string) {
	if err := history(args); err != nil {
		fatal("%v", err)
	}
}

func history(args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening training database: %w", err)
	}
	defer store.Close()

	if flagHistoryClear != "" {
		if err := store.ClearRun(flagHistoryClear); err != nil {
			return err
		}
		fmt.Printf("Cleared run %s\n", flagHistoryClear)
		return nil
	}

	width, height, termErr := term.GetSize(int(os.Stdout.Fd()))
	if !flagHistoryPlain && len(args) == 0 && termErr == nil {
		return tui.RunHistory(store, width, height)
	}

	if len(args) == 1 {
		return printRun(store, args[0])
	}
	return printRuns(store)
}

func printRuns(store *storage.Store) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'neuroflap train' to start one.")
		return nil
	}

	fmt.Printf("  %-24s  %-5s  %-10s  %-6s  %s\n", "Run", "Gens", "Best", "Score", "Updated")
	fmt.Printf("  %-24s  %-5s  %-10s  %-6s  %s\n", "---", "----", "----", "-----", "-------")
	for _, r := range runs {
		fmt.Printf("  %-24s  %-5d  %-10.2f  %-6d  %s\n",
			r.RunID, r.Generations, r.BestFitness, r.BestScore, r.LastUpdated.Format("2006-01-02 15:04"))
	}
	return nil
}

func printRun(store *storage.Store, runID string) error {
	records, err := store.Generations(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No generations recorded for %s.\n", runID)
		return nil
	}

	fmt.Printf("Run %s\n\n", runID)
	fmt.Printf("  %-5s  %-6s  %-10s  %-10s  %-8s  %-8s  %s\n", "Gen", "Score", "Best", "Mean", "StdDev", "Ticks", "End")
	fmt.Printf("  %-5s  %-6s  %-10s  %-10s  %-8s  %-8s  %s\n", "---", "-----", "----", "----", "------", "-----", "---")
	for _, r := range records {
		fmt.Printf("  %-5d  %-6d  %-10.2f  %-10.2f  %-8.2f  %-8d  %s\n",
			r.Generation, r.Score, r.Best, r.Mean, r.StdDev, r.Ticks, r.State)
	}
	return nil
}
