package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/colloc/internal/notify"
)

const (
	iconDefault     = "•"
	iconDestructive = "✗"
	iconWarning     = "!"
	iconSuccess     = "✓"
)

// renderToasts draws the visible notifications, newest first. Dismissed
// notifications stay in the queue until their removal timer fires but are
// no longer drawn.
func renderToasts(items []notify.Notification) string {
	rendered := make([]string, 0, len(items))
	for _, n := range items {
		if !n.Visible {
			continue
		}
		rendered = append(rendered, renderToast(n))
	}
	if len(rendered) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func renderToast(n notify.Notification) string {
	icon, style := toastLook(n.Severity)

	var b strings.Builder
	b.WriteString(icon)
	if n.Title != "" {
		b.WriteString(" " + lipgloss.NewStyle().Bold(true).Render(n.Title))
	}
	if n.Description != "" {
		b.WriteString("\n" + n.Description)
	}
	return style.Render(b.String())
}

func toastLook(s notify.Severity) (string, lipgloss.Style) {
	switch s {
	case notify.SeverityDestructive:
		return iconDestructive, toastDestructiveStyle
	case notify.SeverityWarning:
		return iconWarning, toastWarningStyle
	case notify.SeveritySuccess:
		return iconSuccess, toastSuccessStyle
	default:
		return iconDefault, toastDefaultStyle
	}
}
