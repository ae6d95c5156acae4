package datasource

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// DeckDiff describes how a reloaded deck differs from the one it replaces.
type DeckDiff struct {
	// Added contains section ids present only in the new deck
	Added []string `json:"added,omitempty"`
	// Removed contains section ids present only in the old deck
	Removed []string `json:"removed,omitempty"`
	// Changed contains section ids whose content differs
	Changed []string `json:"changed,omitempty"`
	// Reordered is set when the shared sections appear in a different order
	Reordered bool `json:"reordered,omitempty"`
}

// Empty reports whether the decks are equivalent.
func (d DeckDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && !d.Reordered
}

// Summary returns a one-line description for status bars.
func (d DeckDiff) Summary() string {
	if d.Empty() {
		return "no changes"
	}
	var parts []string
	if n := len(d.Changed); n > 0 {
		parts = append(parts, plural(n, "section")+" changed")
	}
	if n := len(d.Added); n > 0 {
		parts = append(parts, plural(n, "section")+" added")
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, plural(n, "section")+" removed")
	}
	if d.Reordered {
		parts = append(parts, "order changed")
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// DiffDecks compares two decks section by section.
func DiffDecks(old, updated *deck.Deck) DeckDiff {
	var diff DeckDiff
	oldByID := make(map[string]*deck.Section, len(old.Sections))
	for i := range old.Sections {
		oldByID[old.Sections[i].ID] = &old.Sections[i]
	}
	newIDs := make(map[string]bool, len(updated.Sections))

	var sharedNew []string
	for i := range updated.Sections {
		s := &updated.Sections[i]
		newIDs[s.ID] = true
		prev, ok := oldByID[s.ID]
		if !ok {
			diff.Added = append(diff.Added, s.ID)
			continue
		}
		sharedNew = append(sharedNew, s.ID)
		if !reflect.DeepEqual(prev, s) {
			diff.Changed = append(diff.Changed, s.ID)
		}
	}

	var sharedOld []string
	for _, s := range old.Sections {
		if !newIDs[s.ID] {
			diff.Removed = append(diff.Removed, s.ID)
			continue
		}
		sharedOld = append(sharedOld, s.ID)
	}
	diff.Reordered = !reflect.DeepEqual(sharedOld, sharedNew)
	return diff
}
