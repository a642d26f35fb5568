package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/missions/internal/presentation/graph"
	"github.com/aretw0/missions/pkg/workflow"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the workflow graph",
	Long:  `Outputs the mission workflow as a Mermaid flowchart, a Graphviz digraph or the JSON rule table.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out := cmd.OutOrStdout()
		rules := workflow.Rules()

		switch format {
		case "mermaid":
			fmt.Fprint(out, graph.GenerateMermaid(rules, nil))
		case "dot":
			fmt.Fprint(out, graph.GenerateDOT(rules))
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rules)
		default:
			return fmt.Errorf("unknown format %q (supported: mermaid, dot, json)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, dot or json")
}
