package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neuroflap/internal/evolve"
	"github.com/vovakirdan/neuroflap/internal/platform/tui"
	"github.com/vovakirdan/neuroflap/internal/storage"
)

var (
	flagReplayRun   string
	flagReplaySpeed int
	flagReplayOnce  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Watch the saved champion",
	Long: `Load the champion network from the database and watch it fly.
By default the best champion of any run is used and a new track starts
whenever it dies.

Examples:
  neuroflap replay
  neuroflap replay --run run-20260101-120000
  neuroflap replay --once --seed 7`,
	Run: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagReplayRun, "run", "", "Run whose champion to replay (default: best of all runs)")
	replayCmd.Flags().IntVar(&flagReplaySpeed, "speed", 1, "Simulation ticks per frame")
	replayCmd.Flags().BoolVar(&flagReplayOnce, "once", false, "Stop after one track instead of looping")
}

func runReplay(_ *cobra.Command, _ []string) {
	if err := replay(); err != nil {
		fatal("%v", err)
	}
}

func replay() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening training database: %w", err)
	}
	defer store.Close()

	nn, champ, err := evolve.LoadChampion(store, flagReplayRun)
	if errors.Is(err, evolve.ErrNoChampion) {
		return errors.New("no champion recorded yet, run 'neuroflap train' first")
	}
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	source := evolve.NewReplay(cfg, nn, cfg.Run.Seed, !flagReplayOnce)
	if err := tui.Run(ctx, source, cfg, viewerOptions(flagReplaySpeed)); err != nil {
		return err
	}

	if last := source.Last(); len(last.Agents) > 0 {
		fmt.Printf("Champion of %s (generation %d, fitness %.2f)\n", champ.RunID, champ.Generation, champ.Fitness)
		fmt.Printf("Last track: score %d, ticks %d, fitness %.2f\n", last.Score, last.Ticks, last.Agents[0].Fitness)
	}
	return nil
}
