package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neuroflap/internal/evolve"
	"github.com/vovakirdan/neuroflap/internal/flappy"
	"github.com/vovakirdan/neuroflap/internal/platform/tui"
	"github.com/vovakirdan/neuroflap/internal/policy"
	"github.com/vovakirdan/neuroflap/internal/telemetry"
)

var (
	flagRuns     int
	flagRunWatch bool
	flagRunSpeed int
)

var runCmd = &cobra.Command{
	Use:   "run <policy>",
	Short: "Evaluate a built-in policy",
	Long: `Evaluate a single built-in policy on one or more tracks and print how
it did. Track i uses seed (config seed + i).

Run 'neuroflap policies' to see available policies.

Examples:
  neuroflap run follower
  neuroflap run network --runs 10 --seed 42
  neuroflap run follower --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagRuns, "runs", 1, "Number of tracks to evaluate")
	runCmd.Flags().BoolVar(&flagRunWatch, "watch", false, "Watch the runs in the terminal")
	runCmd.Flags().IntVar(&flagRunSpeed, "speed", 1, "Simulation ticks per frame when watching")
}

func runRun(_ *cobra.Command, args []string) {
	id := args[0]
	if !policy.Exists(id) {
		fmt.Fprintf(os.Stderr, "Error: unknown policy %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'neuroflap policies' to see available policies.")
		os.Exit(1)
	}
	if flagRuns <= 0 {
		fatal("--runs must be > 0, got %d", flagRuns)
	}

	cfg := loadConfig()
	controller, err := policy.Create(id, rand.New(rand.NewSource(cfg.Run.Seed)))
	if err != nil {
		fatal("%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if flagRunWatch {
		replay := evolve.NewReplay(cfg, controller, cfg.Run.Seed, true)
		if err := tui.Run(ctx, replay, cfg, viewerOptions(flagRunSpeed)); err != nil {
			fatal("%v", err)
		}
		return
	}

	logger, err := newLogger(os.Stderr, "run")
	if err != nil {
		fatal("%v", err)
	}
	sink := telemetry.LogSink{Logger: logger, Every: 500}

	fmt.Printf("Policy %s\n\n", id)
	fmt.Printf("  %-4s  %-10s  %-6s  %-8s  %-10s  %s\n", "Run", "Seed", "Score", "Ticks", "Fitness", "End")
	fmt.Printf("  %-4s  %-10s  %-6s  %-8s  %-10s  %s\n", "---", "----", "-----", "-----", "-------", "---")

	for i := range flagRuns {
		seed := cfg.Run.Seed + int64(i)
		members := []*flappy.Member{{Controller: controller}}
		res, err := flappy.Evaluate(ctx, cfg, i+1, members, flappy.WithSeed(seed), flappy.WithSink(sink))
		if errors.Is(err, ctx.Err()) && ctx.Err() != nil {
			fmt.Println("\nInterrupted.")
			return
		}
		if err != nil {
			fatal("%v", err)
		}
		a := res.Agents[0]
		fmt.Printf("  %-4d  %-10d  %-6d  %-8d  %-10.2f  %s\n", i+1, seed, res.Score, a.Ticks, a.Fitness, res.State)
		if a.Failure != nil {
			logger.Warn("controller failed", "run", i+1, "error", a.Failure)
		}
	}
}
