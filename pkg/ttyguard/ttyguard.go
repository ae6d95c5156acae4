// Package ttyguard marks non-interactive invocations before any terminal
// library initializes.
//
// Bubble Tea's init triggers lipgloss/termenv background detection, which can
// write OSC/DSR query sequences to stdout. In a real terminal they are
// harmless, but they corrupt --json output and --print pipes. Termenv skips
// probing when CI is set, so those invocations set CI=1 from init. Import
// this package for its side effect, first in main's import list.
package ttyguard

import (
	"os"
	"strings"
)

func init() {
	if os.Getenv("CI") != "" {
		return
	}

	if !ShouldSuppress(os.Args[1:], os.Getenv("GTMDECK_TEST_MODE") != "") {
		return
	}

	_ = os.Setenv("CI", "1")
}

// ShouldSuppress reports whether args describe a run that never starts the
// TUI.
func ShouldSuppress(args []string, envTest bool) bool {
	if envTest {
		return true
	}

	for _, arg := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		switch name {
		case "json", "print", "list", "count", "export", "version", "help", "h":
			return true
		}
	}

	return false
}
