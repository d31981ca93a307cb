package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light Gray

	consoleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // Cyan/Teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
)

// Heading renders a report section heading.
func Heading(s string) string {
	return headingStyle.Render(s)
}

// Console renders a status line such as "[*] Running plugin".
func Console(s string) string {
	return consoleStyle.Render(s)
}

// Error renders an error message.
func Error(s string) string {
	return errorStyle.Render(s)
}

// StyleReport colours a plain text report. Lines ending in ':' are headings,
// indented "> " lines are values. Everything else is left alone.
func StyleReport(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "> "):
			indent := l[:len(l)-len(strings.TrimLeft(l, " "))]
			lines[i] = indent + bulletStyle.Render(trimmed)
		case strings.HasSuffix(trimmed, ":"):
			lines[i] = Heading(l)
		}
	}
	return strings.Join(lines, "\n")
}
