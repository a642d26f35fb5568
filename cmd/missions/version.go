package main

import (
	"fmt"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of missions",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if isTerminal(out) {
			tui.PrintBanner(out, "v"+missions.Version)
			return
		}
		fmt.Fprintf(out, "missions version %s\n", missions.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
