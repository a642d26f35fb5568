package main

import (
	"fmt"

	"github.com/aretw0/missions/internal/scenario"
	"github.com/aretw0/missions/pkg/workflow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script...]",
	Short: "Check the workflow definition and scenario scripts",
	Long: `Verifies that the built-in workflow is well formed and that every given
script parses, references declared missions only and names valid expectations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := workflow.Validate(); err != nil {
			return fmt.Errorf("workflow definition is invalid: %w", err)
		}
		for _, path := range args {
			if _, err := scenario.Load(path); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Workflow is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
