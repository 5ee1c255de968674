package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/kalakrut/portal/internal/core/domain"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")). // Green
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")). // Yellow
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")). // Red
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")) // Blue

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray

	boldStyle = lipgloss.NewStyle().Bold(true)

	successPrefix = successStyle.Render("✓")
	warningPrefix = warningStyle.Render("⚠")
	errorPrefix   = errorStyle.Render("✗")
	arrowPrefix   = infoStyle.Render("→")
)

func severityPrefix(s domain.Severity) string {
	switch s {
	case domain.SeveritySuccess:
		return successPrefix
	case domain.SeverityWarning:
		return warningPrefix
	case domain.SeverityError:
		return errorPrefix
	default:
		return arrowPrefix
	}
}

func flagMark(v bool) string {
	if v {
		return successPrefix
	}
	return dimStyle.Render("·")
}

// printNotifier renders portal notifications inline as they happen.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(n domain.Notification) {
	fmt.Fprintf(p.w, "%s %s\n", severityPrefix(n.Severity), n.Message)
}
