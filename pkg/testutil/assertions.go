package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// AssertSectionCount checks the number of sections.
func AssertSectionCount(t *testing.T, d *deck.Deck, expected int) {
	t.Helper()
	if len(d.Sections) != expected {
		t.Errorf("expected %d sections, got %d", expected, len(d.Sections))
	}
}

// AssertValid fails the test when the deck does not validate.
func AssertValid(t *testing.T, d *deck.Deck) {
	t.Helper()
	if err := d.Validate(); err != nil {
		t.Errorf("deck should be valid: %v", err)
	}
}

// AssertSectionOrder checks the section ids in order.
func AssertSectionOrder(t *testing.T, d *deck.Deck, ids ...string) {
	t.Helper()
	got := SectionIDs(d)
	if strings.Join(got, ",") != strings.Join(ids, ",") {
		t.Errorf("section order = %v, want %v", got, ids)
	}
}

// AssertContainsAll checks that s contains every want string.
func AssertContainsAll(t *testing.T, s string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(s, w) {
			t.Errorf("output missing %q", w)
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing decks whose Go values differ only in nil vs empty
// slices.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteDeckFile encodes d into dir/name, choosing the format from the
// extension, and returns the path.
func WriteDeckFile(t *testing.T, dir, name string, d *deck.Deck) string {
	t.Helper()

	format, err := deck.FormatFor(name)
	if err != nil {
		t.Fatalf("deck file name: %v", err)
	}
	data, err := deck.Encode(d, format)
	if err != nil {
		t.Fatalf("failed to encode deck: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write deck: %v", err)
	}
	return path
}

// SectionIDs returns the section ids in order.
func SectionIDs(d *deck.Deck) []string {
	ids := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		ids[i] = s.ID
	}
	return ids
}

// CountKinds counts top-level blocks by kind.
func CountKinds(d *deck.Deck) map[deck.Kind]int {
	counts := make(map[deck.Kind]int)
	for _, s := range d.Sections {
		for _, b := range s.Blocks {
			counts[b.Kind]++
		}
	}
	return counts
}
