// flappyrl trains linear flappy-bird policies with simulated annealing and
// replays them in the terminal.
//
// Usage:
//
//	flappyrl list              - List registered environments
//	flappyrl train             - Search for a policy and store the best one
//	flappyrl replay [id]       - Watch a stored policy play
//	flappyrl play              - Play yourself
//	flappyrl policies          - List stored policies
//	flappyrl scores            - Show episode scores
//	flappyrl board             - Browse policies and scores interactively
//	flappyrl serve             - Stream replays over SSH
//
// Global flags:
//
//	--seed <value>     - RNG seed (0 = time based)
//	--config <path>    - Config YAML overlaying the defaults
//	--preset <name>    - World preset: classic, tiny
//	--db <path>        - Database path (default: ~/.flappyrl/flappyrl.db)
//	--fps <rate>       - Replay tick rate (0 = from config)
//	--log-level <lvl>  - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappyrl/internal/config"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/storage"

	// Import environments to register them
	_ "github.com/vovakirdan/flappyrl/internal/games/flappy"
)

var (
	// Global flags
	flagSeed     int64
	flagConfig   string
	flagPreset   string
	flagDBPath   string
	flagFPS      int
	flagLogLevel string
	flagEnv      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappyrl",
	Short: "Train and replay flappy-bird policies in your terminal",
	Long: `flappyrl searches for a linear flappy-bird controller with simulated
annealing and random restarts, stores the best weights and replays them.

Available commands:
  list      - Show registered environments
  train     - Run the optimizer and save the best policy
  replay    - Watch a stored policy play
  play      - Play the environment yourself
  policies  - List stored policies
  scores    - Show recorded episode scores
  board     - Interactive policy and score tables
  serve     - Start SSH server streaming replays

Examples:
  flappyrl train --seed 42 --trace trace.csv
  flappyrl train --preset tiny --restarts 3 --replay
  flappyrl replay
  flappyrl replay --weights 0.1,-0.5,0.01,0.3,-1
  flappyrl serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "World preset: classic, tiny")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flappyrl/flappyrl.db", "Path to policy and score database")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Replay tick rate (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "flappy", "Environment ID")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds the stderr logger at the --log-level level.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "flappyrl",
	})
	level, err := log.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfig loads the config file, applies --preset and the flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagPreset != "" {
		if err := config.ApplyPreset(&cfg, config.Preset(flagPreset)); err != nil {
			return cfg, err
		}
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagFPS > 0 {
		cfg.Replay.TickRate = flagFPS
	}
	return cfg, cfg.Validate()
}

// runtimeConfig resolves the seed and the terminal size for a rendered session.
func runtimeConfig(cfg config.Config) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.TickRate = cfg.Replay.TickRate
	rc.Seed = cfg.Seed
	if rc.Seed == 0 {
		rc.Seed = core.NewRand(0).Int64()
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW, rc.ScreenH = w, h
	}
	return rc
}

// openStore opens the database, or returns nil with a warning.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, continuing without it", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// mustOpenStore opens the database or exits.
func mustOpenStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatalf("Error opening database: %v", err)
	}
	return store
}

// fatalf prints an error and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
