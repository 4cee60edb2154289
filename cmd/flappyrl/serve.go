package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an SSH server streaming policy replays",
	Long: `Start an SSH server. Every connection watches the current best stored
policy play a fresh obstacle course. Running the "play" command over SSH
starts a human game instead. Episode scores go to the shared database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.flappyrl/host_key

Examples:
  flappyrl serve                           # Listen on :23234
  flappyrl serve --ssh :2222               # Listen on port 2222
  flappyrl serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234         # watch the best policy
  ssh localhost -p 23234 play    # play yourself`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		fatalf("Error loading config: %v", err)
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = flagSSHAddr
	srvCfg.HostKeyPath = flagHostKey
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	srvCfg.EnvID = flagEnv
	srvCfg.Config = cfg

	server, err := tui.NewSSHServer(srvCfg, store, logger.WithPrefix("flappyrl-ssh"))
	if err != nil {
		fatalf("Error creating server: %v", err)
	}

	fmt.Printf("Starting flappyrl SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
