package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/platform/tui"
)

var flagBoardScores bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Browse policies and scores interactively",
	Long: `Open an interactive table of stored policies. Tab switches to scores.

Examples:
  flappyrl board
  flappyrl board --scores`,
	Args: cobra.NoArgs,
	Run:  runBoard,
}

func init() {
	boardCmd.Flags().BoolVar(&flagBoardScores, "scores", false, "Start on the scores tab")
}

func runBoard(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	tab := tui.TabPolicies
	if flagBoardScores {
		tab = tui.TabScores
	}

	rc := core.DefaultConfig()
	if cfg, err := loadConfig(); err == nil {
		rc = runtimeConfig(cfg)
	}

	if err := tui.RunBoard(store, flagEnv, tab, rc.ScreenW, rc.ScreenH); err != nil {
		fatalf("Error running board: %v", err)
	}
}
