package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neuroflap/internal/policy"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List built-in policies",
	Long:  `Shows the controllers that 'neuroflap run' can evaluate.`,
	Run:   runPolicies,
}

func runPolicies(_ *cobra.Command, _ []string) {
	policies := policy.List()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, p := range policies {
		maxIDLen = max(maxIDLen, len(p.ID))
	}

	fmt.Println("Available policies:")
	fmt.Println()
	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, p := range policies {
		fmt.Printf("  %-*s  %s\n", maxIDLen, p.ID, p.Title)
	}

	fmt.Println()
	fmt.Println("Run 'neuroflap run <id>' to evaluate a policy.")
}
