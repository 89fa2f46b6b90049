package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neuroflap/internal/evolve"
	"github.com/vovakirdan/neuroflap/internal/platform/tui"
	"github.com/vovakirdan/neuroflap/internal/storage"
	"github.com/vovakirdan/neuroflap/internal/telemetry"
)

var (
	flagGenerations int
	flagPopulation  int
	flagHidden      int
	flagElite       int
	flagRate        float64
	flagSigma       float64
	flagThreshold   float64
	flagTrainSeed   int64
	flagWatch       bool
	flagSpeed       int
	flagOutput      string
	flagWorkers     int
	flagRunID       string
	flagNoDB        bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a population of networks",
	Long: `Evolve a population of feedforward networks. Every generation is
evaluated on one shared track; the fittest members are kept unchanged and
the rest of the next generation are mutated copies of them.

Training stops after --generations, or earlier once a champion reaches
--threshold. Each generation is stored in the database under --run-id, and
the best network so far is saved as the run's champion.

Examples:
  neuroflap train
  neuroflap train --generations 200 --population 100 --threshold 500
  neuroflap train --watch --speed 4
  neuroflap train --output ./runs/first --workers 8`,
	Run: runTrain,
}

func init() {
	def := evolve.DefaultOptions()
	trainCmd.Flags().IntVar(&flagGenerations, "generations", def.Generations, "Number of generations (0 = until threshold or Ctrl+C)")
	trainCmd.Flags().IntVar(&flagPopulation, "population", def.Population, "Population size")
	trainCmd.Flags().IntVar(&flagHidden, "hidden", def.Hidden, "Hidden layer width")
	trainCmd.Flags().IntVar(&flagElite, "elite", def.Elite, "Members kept unchanged each generation")
	trainCmd.Flags().Float64Var(&flagRate, "mutation-rate", def.MutationRate, "Per-weight mutation probability")
	trainCmd.Flags().Float64Var(&flagSigma, "mutation-sigma", def.MutationSigma, "Standard deviation of weight mutations")
	trainCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "Stop once a champion reaches this fitness (0 = off)")
	trainCmd.Flags().Int64Var(&flagTrainSeed, "train-seed", def.Seed, "Seed for population init and breeding")
	trainCmd.Flags().BoolVar(&flagWatch, "watch", false, "Watch generations live in the terminal")
	trainCmd.Flags().IntVar(&flagSpeed, "speed", 1, "Simulation ticks per frame when watching")
	trainCmd.Flags().StringVar(&flagOutput, "output", "", "Directory for generations.csv, config.yaml and champion.json")
	trainCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent controller calls per tick (0 = use config)")
	trainCmd.Flags().StringVar(&flagRunID, "run-id", "", "Run identifier (default: timestamp)")
	trainCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Do not record the run in the database")
}

func runTrain(_ *cobra.Command, _ []string) {
	if err := train(); err != nil {
		fatal("%v", err)
	}
}

// train runs a training session. Errors are returned rather than exiting so
// the deferred closes of the database and output files always run.
func train() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}
	if flagWorkers > 0 {
		cfg.Run.Workers = flagWorkers
	}

	runID := flagRunID
	if runID == "" {
		runID = time.Now().Format("run-20060102-150405")
	}

	var logOut io.Writer = os.Stderr
	out, err := telemetry.NewOutputManager(flagOutput)
	if err != nil {
		return err
	}
	defer out.Close()

	if flagWatch {
		// The viewer owns the terminal; log to the output directory if any.
		logOut = io.Discard
		if out != nil {
			f, err := os.Create(filepath.Join(out.Dir(), "train.log"))
			if err != nil {
				return fmt.Errorf("creating train.log: %w", err)
			}
			defer f.Close()
			logOut = f
		}
	}
	logger, err := newLogger(logOut, "train")
	if err != nil {
		return err
	}

	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	options := []evolve.Option{evolve.WithLogger(logger)}
	if !flagNoDB {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return fmt.Errorf("opening training database: %w", err)
		}
		defer store.Close()
		options = append(options, evolve.WithRecorder(evolve.NewStoreRecorder(store, runID)))
	}
	if out != nil {
		options = append(options, evolve.WithRecorder(out))
	}
	if !flagWatch {
		options = append(options, evolve.WithSink(telemetry.LogSink{Logger: logger, Every: 500}))
	}

	opts := evolve.Options{
		Population:    flagPopulation,
		Hidden:        flagHidden,
		Elite:         flagElite,
		Generations:   flagGenerations,
		MutationRate:  flagRate,
		MutationSigma: flagSigma,
		Threshold:     flagThreshold,
		Seed:          flagTrainSeed,
	}
	trainer, err := evolve.NewTrainer(cfg, opts, options...)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("training started", "run", runID, "population", opts.Population, "generations", opts.Generations)

	if flagWatch {
		if err := tui.Run(ctx, trainer, cfg, viewerOptions(flagSpeed)); err != nil {
			return err
		}
	} else if _, err := trainer.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}

	printSummary(runID, trainer.Summary())
	return nil
}

// printSummary reports the champion after training.
func printSummary(runID string, s evolve.Summary) {
	fmt.Printf("Run %s: %d generation(s)\n", runID, len(s.History))
	if s.Champion == nil {
		fmt.Println("No champion recorded.")
		return
	}
	fmt.Printf("Champion: generation %d, fitness %.2f\n", s.ChampionGeneration, s.ChampionFitness)
	if n := len(s.History); n > 0 {
		last := s.History[n-1]
		fmt.Printf("Last generation: score %d, best %.2f, mean %.2f, stddev %.2f\n",
			last.Score, last.Best, last.Mean, last.StdDev)
	}
}
