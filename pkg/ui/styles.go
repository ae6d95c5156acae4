package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
	SpaceLG = 4
)

// Glyphs shared by the rail and content.
const (
	glyphVisited  = "●"
	glyphFilled   = "█"
	glyphEmpty    = "░"
	glyphSelected = "▸"
	glyphExport   = "⎙"
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

// CardStyle frames a block in a rounded border in the tone's color.
func CardStyle(t Theme, tone string, width int) lipgloss.Style {
	border := t.Border
	if tone != "" {
		border = t.Tone(tone)
	}
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(width-2, 1))
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// RenderBadge returns a short inverse label in the tone's color.
func RenderBadge(t Theme, label, tone string) string {
	return t.Renderer.NewStyle().
		Foreground(lipgloss.Color("#0B0F1A")).
		Background(t.Tone(tone)).
		Bold(true).
		Padding(0, 1).
		Render(label)
}

// RenderLevelBadge colors a High/Medium/Low rating.
func RenderLevelBadge(t Theme, level string) string {
	tone := "muted"
	switch strings.ToLower(level) {
	case "high", "critical":
		tone = "red"
	case "medium":
		tone = "yellow"
	case "low":
		tone = "green"
	}
	return t.Renderer.NewStyle().Foreground(t.Tone(tone)).Bold(true).Render(level)
}

// ══════════════════════════════════════════════════════════════════════════════
// METRIC VISUALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// RenderMiniBar renders a horizontal bar for a value between 0 and 1.
func RenderMiniBar(value float64, width int, t Theme, tone string) string {
	if width <= 0 {
		return ""
	}
	value = min(max(value, 0), 1)
	filled := min(int(value*float64(width)+0.5), width)
	return t.Renderer.NewStyle().Foreground(t.Tone(tone)).Render(strings.Repeat(glyphFilled, filled)) +
		t.Renderer.NewStyle().Foreground(t.Muted).Render(strings.Repeat(glyphEmpty, width-filled))
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}

// RenderSubtleDivider renders a more subtle divider using dots
func RenderSubtleDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Muted).
		Render(strings.Repeat("·", width))
}
