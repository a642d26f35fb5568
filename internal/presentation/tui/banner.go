package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner and version to w.
// Colours are dropped when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`  __  __ _         _                 `, "#818cf8"},
		{` |  \/  (_)___ ___(_) ___  _ __  ___ `, "#a78bfa"},
		{` | |\/| | / __/ __| |/ _ \| '_ \/ __|`, "#c084fc"},
		{` | |  | | \__ \__ \ | (_) | | | \__ \`, "#e879f9"},
		{` |_|  |_|_|___/___/_|\___/|_| |_|___/`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(" "+version).Faint())
	fmt.Fprintln(w)
}
