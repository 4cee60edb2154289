package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/anneal"
)

var flagLimit int

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List stored policies",
	Long: `Display the best stored policies for the environment, highest reward first.

Examples:
  flappyrl policies
  flappyrl policies --limit 3`,
	Args: cobra.NoArgs,
	Run:  runPolicies,
}

func init() {
	policiesCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of policies to show")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of scores to show")
}

func runPolicies(cmd *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	policies, err := store.TopPolicies(flagEnv, flagLimit)
	if err != nil {
		fatalf("Error retrieving policies: %v", err)
	}

	fmt.Printf("Policies - %s\n", flagEnv)
	fmt.Println()

	if len(policies) == 0 {
		fmt.Println("No policies stored yet.")
		fmt.Println()
		fmt.Println("Run 'flappyrl train' to find one!")
		return
	}

	fmt.Printf("  %-4s  %-6s  %-10s  %-16s  %s\n", "Rank", "ID", "Reward", "Date", "Weights")
	fmt.Printf("  %-4s  %-6s  %-10s  %-16s  %s\n", "----", "--", "------", "----", "-------")

	for i, p := range policies {
		fmt.Printf("  %-4d  %-6d  %-10g  %-16s  %s\n",
			i+1, p.ID, p.Reward, p.CreatedAt.Format("2006-01-02 15:04"), anneal.NewPolicy(p.Weights))
	}

	fmt.Println()
	fmt.Printf("Run 'flappyrl replay %d' to watch the best one.\n", policies[0].ID)
}
