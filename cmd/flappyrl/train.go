package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/anneal"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/platform/tui"
	"github.com/vovakirdan/flappyrl/internal/registry"
	"github.com/vovakirdan/flappyrl/internal/storage"
	"github.com/vovakirdan/flappyrl/internal/telemetry"
)

var (
	flagTrace    string
	flagSummary  string
	flagRestarts int
	flagReplay   bool
	flagNoSave   bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Search for a policy with simulated annealing",
	Long: `Run simulated annealing with random restarts over the 5 weights of a
linear policy (4 observation weights plus a bias). The policy flaps when
the weighted sum is positive. Each candidate is scored by one episode,
capped at the configured reward.

The best policy is printed and saved to the database. Ctrl+C stops the
search early and keeps the best policy found so far.

Examples:
  flappyrl train
  flappyrl train --seed 42 --trace runs/trace.csv --summary runs/restarts.csv
  flappyrl train --preset tiny --restarts 3 --replay
  flappyrl train --log-level debug`,
	Args: cobra.NoArgs,
	Run:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&flagTrace, "trace", "", "Write every annealing iteration to this CSV file")
	trainCmd.Flags().StringVar(&flagSummary, "summary", "", "Write one row per restart to this CSV file")
	trainCmd.Flags().IntVar(&flagRestarts, "restarts", 0, "Override the number of restarts")
	trainCmd.Flags().BoolVar(&flagReplay, "replay", false, "Replay the best policy when training finishes")
	trainCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store the policy in the database")
}

func runTrain(cmd *cobra.Command, args []string) {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	if flagRestarts > 0 {
		cfg.Anneal.Restarts = flagRestarts
	}
	rc := runtimeConfig(cfg)

	env, err := registry.Create(flagEnv, cfg, core.NewRand(rc.Seed))
	if err != nil {
		fatalf("Error creating environment: %v", err)
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []anneal.Option{anneal.WithLogger(logger)}
	if flagTrace != "" {
		tw, err := telemetry.CreateTraceFile(flagTrace)
		if err != nil {
			fatalf("Error creating trace: %v", err)
		}
		defer tw.Close()
		opts = append(opts, anneal.WithObserver(tw))
	}

	logger.Info("training",
		"env", flagEnv,
		"seed", rc.Seed,
		"restarts", cfg.Anneal.Restarts,
		"temperature", cfg.Anneal.InitialTemperature,
		"cooling", cfg.Anneal.CoolingRate,
		"cap", cfg.Anneal.RewardCap)

	// The optimizer gets its own stream so obstacle courses do not depend
	// on how many proposals were drawn.
	annealer := anneal.New(env, cfg.Anneal, core.NewRand(rc.Seed+1), opts...)
	res, runErr := annealer.Run(ctx)
	switch {
	case errors.Is(runErr, context.Canceled):
		logger.Warn("interrupted, keeping best policy so far")
	case runErr != nil:
		fatalf("Error during training: %v", runErr)
	}
	if len(res.Policy.Weights) == 0 {
		fatalf("No policy was evaluated.")
	}

	fmt.Println()
	for _, rr := range res.Restarts {
		fmt.Printf("Restart %d/%d: reward %g after %d iterations\n",
			rr.Restart+1, cfg.Anneal.Restarts, rr.Reward, rr.Iterations)
	}
	fmt.Printf("Best Weights: %s, Best Reward: %g\n", res.Policy, res.Reward)
	fmt.Printf("Evaluations: %d\n", res.Evaluations)

	if flagSummary != "" {
		if err := writeSummary(flagSummary, res.Restarts); err != nil {
			logger.Error("could not write summary", "error", err)
		}
	}

	var store *storage.Store
	var policyID int64
	if !flagNoSave {
		store = openStore(logger)
	}
	if store != nil {
		defer store.Close()
		policyID, err = store.SavePolicy(storage.PolicyEntry{
			EnvID:    flagEnv,
			Weights:  res.Policy.Weights,
			Reward:   res.Reward,
			Seed:     rc.Seed,
			Restarts: len(res.Restarts),
		})
		if err != nil {
			logger.Error("could not save policy", "error", err)
		} else {
			fmt.Printf("Saved as policy #%d\n", policyID)
		}
	}

	if !flagReplay || ctx.Err() != nil {
		return
	}

	replayEnv, err := registry.Create(flagEnv, cfg, core.NewRand(rc.Seed))
	if err != nil {
		fatalf("Error creating environment: %v", err)
	}
	defer replayEnv.Close()

	state, err := tui.Run(replayEnv, tui.Options{
		Policy:   &res.Policy,
		PolicyID: policyID,
		Store:    store,
		TickRate: rc.TickRate,
		Width:    rc.ScreenW,
		Height:   rc.ScreenH,
	})
	if err != nil {
		fatalf("Error running replay: %v", err)
	}
	fmt.Printf("Replay score: %d\n", state.Score)
}

func writeSummary(path string, restarts []anneal.RestartResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := telemetry.WriteRestarts(f, restarts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
