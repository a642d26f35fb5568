package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/missions/pkg/workflow"
)

// GenerateDOT produces a Graphviz digraph of the workflow rules, one node per
// state and one labelled edge per trigger.
func GenerateDOT(rules []workflow.Rule) string {
	var sb strings.Builder
	sb.WriteString("digraph missions {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n")

	for _, state := range statesOf(rules) {
		attrs := fmt.Sprintf("label=%q", state.Label())
		if state == workflow.Initial() {
			attrs += ", shape=circle"
		} else if isTerminal(rules, state) {
			attrs += ", shape=doublecircle"
		}
		sb.WriteString(fmt.Sprintf("    %q [%s];\n", string(state), attrs))
	}

	for _, r := range rules {
		attrs := fmt.Sprintf("label=%q", string(r.Trigger))
		if isHoldEdge(r) {
			attrs += ", style=dashed"
		}
		sb.WriteString(fmt.Sprintf("    %q -> %q [%s];\n", string(r.From), string(r.To), attrs))
	}

	sb.WriteString("}\n")
	return sb.String()
}
