package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/internal/presentation/tui"
	"github.com/aretw0/missions/internal/scenario"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Walk missions through a scripted sequence of triggers",
	Long: `Loads a YAML script declaring missions and trigger steps, applies
every step against a fresh in-memory engine and prints each outcome.
The command fails when any step misses its expectation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showHistory, _ := cmd.Flags().GetBool("history")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		script, err := scenario.Load(args[0])
		if err != nil {
			return err
		}

		rt, err := a.newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		interactive := isTerminal(out)
		if interactive {
			tui.PrintBanner(out, "v"+missions.Version)
		}

		report, err := scenario.Run(cmd.Context(), rt.tracker, script)
		if err != nil {
			return err
		}
		printOutcomes(out, report)

		all, err := rt.tracker.List(cmd.Context())
		if err != nil {
			return err
		}
		var md strings.Builder
		md.WriteString("## Missions\n\n")
		md.WriteString(tui.SummaryMarkdown(all))
		if showHistory {
			for _, m := range all {
				md.WriteString("\n")
				md.WriteString(tui.HistoryMarkdown(m))
			}
		}
		printMarkdown(out, md.String(), interactive)

		if n := report.Failures(); n > 0 {
			return fmt.Errorf("%d of %d steps failed", n, len(report.Outcomes))
		}
		return nil
	},
}

func printOutcomes(w io.Writer, report *scenario.Report) {
	for _, o := range report.Outcomes {
		mark := "ok  "
		if !o.Passed {
			mark = "FAIL"
		}
		result := fmt.Sprintf("%s -> %s", o.From, o.To)
		if o.Err != nil {
			result = "rejected: " + o.Err.Error()
		}
		line := fmt.Sprintf("%s step %d %s %s: %s", mark, o.Step, o.Ref, o.Trigger, result)
		if o.Expect != "" {
			line += fmt.Sprintf(" (expect %s)", o.Expect)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// printMarkdown renders md with glamour on a terminal and writes it raw otherwise.
func printMarkdown(w io.Writer, md string, interactive bool) {
	if interactive {
		if render, err := tui.NewRenderer(); err == nil {
			if rendered, err := render(md); err == nil {
				fmt.Fprint(w, rendered)
				return
			}
		}
	}
	fmt.Fprint(w, md)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("history", false, "Print the transition history of every mission")
}
