package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown blocks with glamour at a fixed wrap
// width. Output is cached per source text; the deck is static, so the cache
// only grows with the number of markdown blocks.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	cache    map[string]string
}

// NewMarkdownRenderer creates a renderer wrapping at width cells. When glamour
// cannot be initialised the renderer falls back to plain wrapped text.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	width = max(width, 20)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &MarkdownRenderer{renderer: r, width: width, cache: make(map[string]string)}
}

// Width returns the wrap width.
func (m *MarkdownRenderer) Width() int {
	return m.width
}

// Render converts markdown to styled terminal text.
func (m *MarkdownRenderer) Render(md string) string {
	if out, ok := m.cache[md]; ok {
		return out
	}
	out := ""
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			// Strip the blank lines glamour adds around the document
			out = strings.Trim(rendered, "\n")
		}
	}
	if out == "" {
		out = strings.Join(wrapText(md, m.width), "\n")
	}
	m.cache[md] = out
	return out
}
