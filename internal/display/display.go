// Package display renders reports and progress for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aletheia-intel/aletheia/models"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1).
		MarginBottom(1)

	metaStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		MarginTop(1)

	bodyStyle = lipgloss.NewStyle().
		Width(100)

	bannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Padding(0, 2)

	errStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#EF4444"))
)

// Banner returns the startup banner.
func Banner() string {
	return bannerStyle.Render("Aletheia | multi-agent market intelligence")
}

// RenderReport formats a report for the terminal, styling markdown
// headings as sections.
func RenderReport(r *models.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Title))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("report %s | %s", r.ID, r.CreatedAt.Format("2006-01-02 15:04"))))
	b.WriteString("\n")

	for _, line := range strings.Split(r.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			b.WriteString(sectionStyle.Render(heading))
			b.WriteString("\n")
		default:
			b.WriteString(bodyStyle.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderError formats a fatal error line.
func RenderError(err error) string {
	return errStyle.Render("error: " + err.Error())
}
