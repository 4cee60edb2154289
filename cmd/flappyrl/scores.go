package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagClear bool

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show episode scores",
	Long: `Display the top scores of played and replayed episodes.

Examples:
  flappyrl scores
  flappyrl scores --limit 20
  flappyrl scores --clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all scores for the environment")
}

func runScores(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	if flagClear {
		if err := store.ClearScores(flagEnv); err != nil {
			fatalf("Error clearing scores: %v", err)
		}
		fmt.Printf("Cleared scores for %s.\n", flagEnv)
		return
	}

	scores, err := store.TopScores(flagEnv, flagLimit)
	if err != nil {
		fatalf("Error retrieving scores: %v", err)
	}

	fmt.Printf("High Scores - %s\n", flagEnv)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Run 'flappyrl play' or 'flappyrl replay' to set the first one!")
		return
	}

	fmt.Printf("  %-4s  %-10s  %-8s  %s\n", "Rank", "Score", "Policy", "Date")
	fmt.Printf("  %-4s  %-10s  %-8s  %s\n", "----", "-----", "------", "----")

	for i, entry := range scores {
		policy := "human"
		if entry.PolicyID > 0 {
			policy = fmt.Sprintf("#%d", entry.PolicyID)
		}
		fmt.Printf("  %-4d  %-10d  %-8s  %s\n", i+1, entry.Score, policy, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := store.Stats(flagEnv); err == nil {
		fmt.Printf("Best: %d  Episodes: %d  Average: %.1f\n", stats.HighScore, stats.Episodes, stats.AvgScore)
	}
}
