package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// helpIntro explains the parts of the screen that are not key bindings.
const helpIntro = `The rail on the left lists every section. A dot marks sections
you have already seen and the bar shows how much of the deck you have read.
Click a section, a city or a phase to select it. The wheel scrolls.`

// RenderHelp renders the key reference modal.
// This is a compact modal (~64 chars wide) that fits on one screen.
func RenderHelp(theme Theme, h help.Model, keys keyMap, width int) string {
	r := theme.Renderer

	modalWidth := 64
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	modalWidth = max(modalWidth, 20)

	titleStyle := r.NewStyle().
		Bold(true).
		Foreground(theme.Accent)

	contentStyle := r.NewStyle().
		Foreground(theme.Subtext).
		Width(modalWidth - 6)

	footerStyle := r.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	h.ShowAll = true
	h.Width = modalWidth - 6

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(RenderDivider(theme, modalWidth-6))
	b.WriteString("\n\n")
	b.WriteString(h.View(keys))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(strings.ReplaceAll(helpIntro, "\n", " ")))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("? or Esc to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}
