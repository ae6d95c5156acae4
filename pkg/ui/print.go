package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
)

// RenderDeck renders every section in order as static text. Counters show
// their final values and every city and phase is expanded.
func RenderDeck(d *deck.Deck, width int, r *lipgloss.Renderer) string {
	defer metrics.Timer(metrics.UIRender)()

	width = max(width, 40)
	t := DefaultTheme(r)
	sr := sectionRenderer{
		theme:  t,
		width:  width,
		md:     NewMarkdownRenderer(width),
		value:  finalValues,
		expand: true,
	}

	var b strings.Builder
	b.WriteString(t.AccentBold.Render(d.Title))
	if d.Subtitle != "" {
		b.WriteString("  " + t.MutedText.Render(d.Subtitle))
	}
	b.WriteString("\n\n")
	for i := range d.Sections {
		b.WriteString(sr.render(&d.Sections[i]).String())
		b.WriteString("\n")
	}
	if len(d.Footer) > 0 {
		b.WriteString(RenderSubtleDivider(t, width))
		b.WriteString("\n")
		for _, line := range d.Footer {
			b.WriteString(t.MutedText.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PrintDeck writes RenderDeck output to w, styled for w's color profile.
func PrintDeck(w io.Writer, d *deck.Deck, width int) error {
	_, err := io.WriteString(w, RenderDeck(d, width, lipgloss.NewRenderer(w)))
	return err
}
