package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/platform/tui"
)

// fatal prints an error and exits, as every command does on failure.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig loads the evaluation config and applies the global seed.
func loadConfig() config.EvalConfig {
	cfg, err := readConfig()
	if err != nil {
		fatal("%v", err)
	}
	return cfg
}

// readConfig is loadConfig for commands that must clean up before exiting.
func readConfig() (config.EvalConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.EvalConfig{}, err
	}
	if flagSeed != 0 {
		cfg.Run.Seed = flagSeed
	}
	if err := cfg.Validate(); err != nil {
		return config.EvalConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the command logger. Output goes to w, which is
// io.Discard while a full-screen viewer owns the terminal.
func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", flagLogLevel)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	logger.SetLevel(level)
	return logger, nil
}

// viewerOptions sizes the viewer to the current terminal.
func viewerOptions(speed int) tui.Options {
	opts := tui.DefaultOptions()
	opts.TickRate = flagFPS
	opts.Speed = speed
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		opts.Width = w
		opts.Height = h
	}
	return opts
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
