package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme is the deck palette bound to a renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Accent    lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	Subtext   lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
	Surface   lipgloss.TerminalColor
	Card      lipgloss.TerminalColor
	Highlight lipgloss.TerminalColor
	Success   lipgloss.TerminalColor
	Danger    lipgloss.TerminalColor

	// Pre-computed styles used on every frame.
	Base        lipgloss.Style
	Title       lipgloss.Style
	Lead        lipgloss.Style
	MutedText   lipgloss.Style
	SubText     lipgloss.Style
	AccentBold  lipgloss.Style
	RailActive  lipgloss.Style
	RailItem    lipgloss.Style
	StatusError lipgloss.Style
	StatusOK    lipgloss.Style
}

// DefaultTheme returns the dark deck theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Accent:    ThemeFg(deck.ColorAccent),
		Text:      ThemeFg(deck.ColorText),
		Subtext:   ThemeFg(deck.ColorTextSecondary),
		Muted:     ThemeFg(deck.ColorTextDim),
		Border:    ThemeFg(deck.ColorBorder),
		Surface:   ThemeBg(deck.ColorSurface),
		Card:      ThemeBg(deck.ColorCard),
		Highlight: ThemeBg(deck.ColorCardHover),
		Success:   ThemeFg(deck.ColorGreen),
		Danger:    ThemeFg(deck.ColorRed),
	}

	t.Base = r.NewStyle().Foreground(t.Text)
	t.Title = r.NewStyle().Foreground(t.Text).Bold(true)
	t.Lead = r.NewStyle().Foreground(t.Subtext)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SubText = r.NewStyle().Foreground(t.Subtext)
	t.AccentBold = r.NewStyle().Foreground(t.Accent).Bold(true)
	t.RailActive = r.NewStyle().
		Foreground(t.Accent).
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Accent).
		Bold(true)
	t.RailItem = r.NewStyle().Foreground(t.Subtext).PaddingLeft(1)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.StatusOK = r.NewStyle().Foreground(t.Success)

	return t
}

// Tone returns the foreground color for a deck tone name.
func (t Theme) Tone(tone string) lipgloss.TerminalColor {
	return ThemeFg(deck.ToneColor(tone))
}

// ToneStyle is a bold style in the tone's color. It satisfies chart.Styler.
func (t Theme) ToneStyle(tone string) lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Tone(tone))
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
