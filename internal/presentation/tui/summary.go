package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/missions/pkg/domain"
	"github.com/muesli/termenv"
)

var stateColors = map[domain.State]string{
	domain.StateCreated:     "#94a3b8",
	domain.StateAssigned:    "#60a5fa",
	domain.StateInProgress:  "#facc15",
	domain.StateOnHold:      "#fb923c",
	domain.StateUnderReview: "#c084fc",
	domain.StateCompleted:   "#4ade80",
	domain.StateClosed:      "#64748b",
}

// SummaryMarkdown renders missions as a markdown table with ID, Title,
// Description and Current State columns, in the given order.
func SummaryMarkdown(missions []domain.Mission) string {
	var sb strings.Builder
	sb.WriteString("| ID | Title | Description | Current State |\n")
	sb.WriteString("|----|-------|-------------|---------------|\n")
	for _, m := range missions {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			m.ShortID(),
			escapeCell(m.Title),
			escapeCell(m.Description),
			m.State.Label(),
		))
	}
	if len(missions) == 0 {
		sb.WriteString("\n_No missions._\n")
	}
	return sb.String()
}

// HistoryMarkdown renders the transition history of a single mission.
func HistoryMarkdown(m domain.Mission) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeCell(m.Title)))
	sb.WriteString(fmt.Sprintf("Current state: **%s**\n\n", m.State.Label()))
	if len(m.History) == 0 {
		sb.WriteString("_No transitions yet._\n")
		return sb.String()
	}
	sb.WriteString("| # | Trigger | From | To |\n")
	sb.WriteString("|---|---------|------|----|\n")
	for i, h := range m.History {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, h.Trigger, h.From.Label(), h.To.Label()))
	}
	return sb.String()
}

// StateBadge colours the state label for the given profile.
func StateBadge(p termenv.Profile, s domain.State) string {
	style := p.String(s.Label())
	if c, ok := stateColors[s]; ok {
		style = style.Foreground(p.Color(c)).Bold()
	}
	return style.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
