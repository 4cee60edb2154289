package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/anneal"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/platform/tui"
	"github.com/vovakirdan/flappyrl/internal/registry"
	"github.com/vovakirdan/flappyrl/internal/storage"
)

var (
	flagWeights []float64
	flagOnce    bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [policy-id]",
	Short: "Watch a policy play",
	Long: `Replay a policy in the terminal. Without arguments the best stored
policy for the environment is used. The status line shows the state
vector, the weights and the dot product that picks the action.

Controls:
  P/Esc      - Pause
  +/-        - Faster/slower
  R          - Restart (after game over)
  Q/Ctrl+C   - Quit

Examples:
  flappyrl replay
  flappyrl replay 12
  flappyrl replay --weights 0.1,-0.5,0.01,0.3,-1 --seed 7
  flappyrl replay --fps 60 --once`,
	Args: cobra.MaximumNArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().Float64SliceVar(&flagWeights, "weights", nil, "Comma separated policy weights (observation weights then bias)")
	replayCmd.Flags().BoolVar(&flagOnce, "once", false, "Exit after the first episode")
}

func runReplay(cmd *cobra.Command, args []string) {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	rc := runtimeConfig(cfg)

	var (
		policy   anneal.Policy
		policyID int64
		store    *storage.Store
	)

	switch {
	case len(flagWeights) > 0:
		if len(args) > 0 {
			fatalf("Error: pass either a policy ID or --weights, not both")
		}
		policy = anneal.NewPolicy(flagWeights)
		store = openStore(logger)
	default:
		store = mustOpenStore()
		entry, err := loadPolicy(store, args)
		if err != nil {
			store.Close()
			fatalf("Error: %v\nRun 'flappyrl train' first.", err)
		}
		policy = anneal.NewPolicy(entry.Weights)
		policyID = entry.ID
		logger.Info("replaying policy", "id", entry.ID, "reward", entry.Reward, "weights", policy)
	}
	if store != nil {
		defer store.Close()
	}

	env, err := registry.Create(flagEnv, cfg, core.NewRand(rc.Seed))
	if err != nil {
		fatalf("Error creating environment: %v", err)
	}
	defer env.Close()

	state, err := tui.Run(env, tui.Options{
		Policy:         &policy,
		PolicyID:       policyID,
		Store:          store,
		TickRate:       rc.TickRate,
		Width:          rc.ScreenW,
		Height:         rc.ScreenH,
		ExitOnGameOver: flagOnce,
	})
	if err != nil {
		fatalf("Error running replay: %v", err)
	}
	fmt.Printf("Score: %d (%d pipes passed this session)\n", state.Score, state.PipesPassed)
}

// loadPolicy resolves the policy-id argument, or the best policy without one.
func loadPolicy(store *storage.Store, args []string) (storage.PolicyEntry, error) {
	if len(args) == 0 {
		return store.BestPolicy(flagEnv)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return storage.PolicyEntry{}, fmt.Errorf("invalid policy ID %q", args[0])
	}
	return store.PolicyByID(id)
}
