// neuroflap trains feedforward networks to play a flappy-bird style game by
// neuroevolution, and lets you watch them fly in the terminal.
//
// Usage:
//
//	neuroflap train              - Evolve a population, optionally watching it live
//	neuroflap run <policy>       - Evaluate a single built-in policy
//	neuroflap replay             - Watch the saved champion
//	neuroflap history            - Browse recorded generations
//	neuroflap policies           - List built-in policies
//	neuroflap serve              - Replay the champion to SSH clients
//
// Global flags:
//
//	--config <path>     - Evaluation config YAML (default: search order)
//	--seed <value>      - Track seed (0 = configured seed)
//	--db <path>         - Database path (default: ~/.neuroflap/neuroflap.db)
//	--log-level <lvl>   - debug, info, warn or error
//	--fps <rate>        - Viewer frame rate
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagFPS      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "neuroflap",
	Short: "Neuroflap - evolve networks that play flappy bird in your terminal",
	Long: `Neuroflap evaluates populations of controllers on a shared, seeded
track of gap pipes and evolves feedforward networks by elitism and
Gaussian mutation.

Available commands:
  train     - Evolve a population
  run       - Evaluate one built-in policy
  replay    - Watch the saved champion
  history   - Browse recorded generations
  policies  - List built-in policies
  serve     - Replay the champion over SSH

Examples:
  neuroflap train --generations 100 --watch
  neuroflap run follower --watch
  neuroflap replay
  neuroflap history
  neuroflap serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to evaluation config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Track seed (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.neuroflap/neuroflap.db", "Path to training database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Viewer frame rate (frames per second)")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(serveCmd)
}
