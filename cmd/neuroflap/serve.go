package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neuroflap/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagServeRun    string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Replay the champion over SSH",
	Long: `Start an SSH server that replays the saved champion to every client.

Each connection gets its own viewer on a fresh track. The champion is
loaded when the session starts, so a run that is still training is
picked up by new connections.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.neuroflap/host_key

Examples:
  neuroflap serve
  neuroflap serve --ssh :2222
  neuroflap serve --run run-20260101-120000

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagServeRun, "run", "", "Run whose champion to replay (default: best of all runs)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	eval := loadConfig()

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		RunID:       flagServeRun,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    flagFPS,
	}

	server, err := tui.NewSSHServer(cfg, eval)
	if err != nil {
		fatal("creating server: %v", err)
	}

	fmt.Printf("Starting neuroflap SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fatal("server: %v", err)
	}
}
