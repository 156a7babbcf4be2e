package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	packageStyle = lipgloss.NewStyle().
			Bold(true)

	formatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

// Headline renders the line announcing a job, e.g.
// ">>> Bundling foo-1.0.0 as CJS to lib/index.js..."
func Headline(name, version, format, dest string) string {
	return fmt.Sprintf("%s Bundling %s as %s to %s...",
		markerStyle.Render(">>>"),
		packageStyle.Render(name+"-"+version),
		formatStyle.Render(strings.ToUpper(format)),
		pathStyle.Render(dest),
	)
}

// Done renders the final line of a successful run
func Done() string {
	return doneStyle.Render("Done!")
}
