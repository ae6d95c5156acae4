package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/vanderheijden86/gtmdeck/pkg/config"
)

// keyMap holds every binding of the deck viewer. It implements help.KeyMap.
type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	HalfDown key.Binding
	HalfUp   key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Left     key.Binding
	Right    key.Binding
	Jump     key.Binding
	Copy     key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// newKeyMap builds the bindings; section letters come from config.
func newKeyMap(kc config.KeyConfig) keyMap {
	next, prev := kc.Next, kc.Prev
	if next == "" {
		next = "j"
	}
	if prev == "" {
		prev = "k"
	}
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("down", next), key.WithHelp("↓/"+next, "next section")),
		Prev:     key.NewBinding(key.WithKeys("up", prev), key.WithHelp("↑/"+prev, "prev section")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn/space", "scroll down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		HalfDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		HalfUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev city/phase")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next city/phase")),
		Jump:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump to section")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy as markdown")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "print / export")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Jump, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Jump},
		{k.PageDown, k.PageUp, k.HalfDown, k.HalfUp, k.Top, k.Bottom},
		{k.Left, k.Right, k.Copy, k.Export},
		{k.Help, k.Quit},
	}
}
