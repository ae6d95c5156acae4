package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/gtmdeck/pkg/nav"
)

// railLayout fixes the rail rows so mouse clicks map back to entries.
//
//	0 title, 1 subtitle, 2 blank, 3 progress label, 4 progress bar, 5 blank,
//	6.. one row per section, blank, export control, blank, key hints
type railLayout struct {
	firstEntry int
	entries    int
	exportRow  int
}

const railHeaderRows = 6

func newRailLayout(n int) railLayout {
	return railLayout{
		firstEntry: railHeaderRows,
		entries:    n,
		exportRow:  railHeaderRows + n + 1,
	}
}

// entryAt returns the section index drawn on screen row y.
func (rl railLayout) entryAt(y int) (int, bool) {
	i := y - rl.firstEntry
	if i < 0 || i >= rl.entries {
		return 0, false
	}
	return i, true
}

// renderRail draws the fixed navigation rail, border included, at exactly
// width columns.
func renderRail(t Theme, title, subtitle string, ctrl *nav.Controller, keys keyMap, width, height int) string {
	inner := max(width-1, 4)
	r := t.Renderer
	lines := make([]string, 0, railHeaderRows+ctrl.VisitedCount()+8)

	lines = append(lines,
		t.AccentBold.Render(truncate(title, inner)),
		t.MutedText.Render(truncate(subtitle, inner)),
		"",
		t.SubText.Render(fmt.Sprintf("Progress %3.0f%%", ctrl.Progress())),
		RenderMiniBar(ctrl.Progress()/100, inner-1, t, "accent"),
		"",
	)

	active := ctrl.ActiveIndex()
	for i, s := range ctrl.Sections() {
		label := s.Label
		if s.Icon != "" {
			label = s.Icon + " " + label
		}
		dot := "  "
		if i != active && ctrl.IsVisited(s.ID) {
			dot = " " + r.NewStyle().Foreground(t.Success).Render(glyphVisited)
		}
		if i == active {
			lines = append(lines, t.RailActive.Width(inner-1).Render(truncate(label, inner-2)))
			continue
		}
		lines = append(lines, t.RailItem.Render(padRight(truncate(label, inner-4), inner-4))+dot)
	}

	lines = append(lines,
		"",
		RenderBadge(t, truncate(glyphExport+" Print / Export", inner-2), "accent"),
		"",
	)
	hint := func(b ...string) string {
		return t.MutedText.Render(truncate(strings.Join(b, "  "), inner))
	}
	lines = append(lines,
		hint(keys.Next.Help().Key, keys.Prev.Help().Key, "sections"),
		hint(keys.Jump.Help().Key, "jump", keys.Export.Help().Key, "export"),
		hint(keys.Help.Help().Key, "help", keys.Quit.Help().Key, "quit"),
	)

	return r.NewStyle().
		Width(inner).
		Height(height).
		MaxHeight(height).
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(t.Border).
		Render(strings.Join(lines, "\n"))
}
