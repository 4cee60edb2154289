package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/platform/tui"
	"github.com/vovakirdan/flappyrl/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the environment yourself",
	Long: `Play the same world the policies are trained in.

Controls:
  Space/Up   - Flap
  P/Esc      - Pause
  +/-        - Faster/slower
  R          - Restart (after game over)
  Ctrl+S     - Screenshot to ~/.flappyrl/screenshots
  Q/Ctrl+C   - Quit

Examples:
  flappyrl play
  flappyrl play --preset tiny --fps 20`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	rc := runtimeConfig(cfg)

	env, err := registry.Create(flagEnv, cfg, core.NewRand(rc.Seed))
	if err != nil {
		fatalf("Error creating environment: %v", err)
	}
	defer env.Close()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	state, err := tui.Run(env, tui.Options{
		Store:    store,
		TickRate: rc.TickRate,
		Width:    rc.ScreenW,
		Height:   rc.ScreenH,
	})
	if err != nil {
		fatalf("Error running game: %v", err)
	}
	fmt.Printf("Score: %d\n", state.Score)
}
