package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappyrl/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered environments",
	Long:  `Shows every environment that can be trained, replayed or played.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	envs := registry.List()

	if len(envs) == 0 {
		fmt.Println("No environments registered.")
		return
	}

	fmt.Println("Available environments:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, e := range envs {
		if len(e.ID) > maxIDLen {
			maxIDLen = len(e.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")

	for _, e := range envs {
		fmt.Printf("  %-*s  %s\n", maxIDLen, e.ID, e.Title)
	}

	fmt.Println()
	fmt.Println("Run 'flappyrl train --env <id>' to train a policy.")
}
