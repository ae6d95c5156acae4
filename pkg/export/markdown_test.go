package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

func TestGenerateMarkdownStructure(t *testing.T) {
	d := deck.Default()
	md := GenerateMarkdown(d, MarkdownOptions{})

	if !strings.HasPrefix(md, "# "+d.Title+"\n") {
		t.Errorf("document should start with the deck title, got %q", md[:40])
	}
	if strings.Contains(md, "*Generated:") {
		t.Error("zero Generated should omit the stamp")
	}
	if !strings.Contains(md, "## Contents") {
		t.Error("missing table of contents")
	}
	for i, s := range d.Sections {
		anchor := "<a id=\"" + createSlug(s.Label) + "\"></a>"
		if !strings.Contains(md, anchor) {
			t.Errorf("missing anchor for section %d (%s)", i, s.ID)
		}
		if !strings.Contains(md, "](#"+createSlug(s.Label)+")") {
			t.Errorf("missing TOC link for %s", s.ID)
		}
	}
	for _, line := range d.Footer {
		if !strings.Contains(md, line) {
			t.Errorf("missing footer line %q", line)
		}
	}
}

func TestGenerateMarkdownStamp(t *testing.T) {
	when := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	md := GenerateMarkdown(deck.Default(), MarkdownOptions{Generated: when})
	if !strings.Contains(md, "*Generated: "+when.Format(time.RFC1123)+"*") {
		t.Error("missing generated stamp")
	}
}

func TestSectionMarkdownUsesFinalValues(t *testing.T) {
	d := deck.Default()
	md := SectionMarkdown(d.Section("exec"))

	for _, want := range []string{"## ◆ Executive Summary", "**$64.7B**", "**38M+**", "**~3%**", "- World's largest remittance corridor ($64.7B/yr)"} {
		if !strings.Contains(md, want) {
			t.Errorf("section markdown missing %q", want)
		}
	}
	if !strings.HasSuffix(md, "\n") || strings.HasSuffix(md, "\n\n") {
		t.Error("section markdown should end with exactly one newline")
	}
}

func TestMarkdownBlockKinds(t *testing.T) {
	s := &deck.Section{
		ID:    "x",
		Label: "X",
		Blocks: []deck.Block{
			{Kind: deck.KindCallout, Text: "line one\nline two"},
			{Kind: deck.KindTable, Columns: []string{"A", "B"}, Rows: [][]string{{"1|2", "multi\nline"}}},
			{Kind: deck.KindChart, Title: "Share", Chart: &deck.Chart{
				Type:   deck.ChartBar,
				Prefix: "$",
				Series: []deck.Series{{Records: []deck.Record{{Category: "2024", Value: 64.7, Note: "record"}}}},
			}},
			{Kind: deck.KindFunnel, Funnel: []deck.FunnelStep{{Label: "TAM", Value: "$64.7B", Share: 100}}},
			{Kind: deck.KindRisks, Risks: []deck.Risk{{Title: "Trust", Category: "Market", Likelihood: "High", Impact: "High", Mitigation: "Promotoras"}}},
		},
	}
	md := SectionMarkdown(s)

	for _, want := range []string{
		"> line one\n> line two",
		"| 1\\|2 | multi line |",
		"### Share",
		"| 2024 | $64.7 (record) |",
		"| $64.7B | TAM | 100% |",
		"**Trust** (Market · likelihood High · impact High)",
		"*Mitigation:* Promotoras",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestCreateSlug(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Executive Summary", "executive-summary"},
		{"KPIs & Metrics", "kpis-metrics"},
		{"  90-Day Plan  ", "90-day-plan"},
		{"Why Me?", "why-me"},
		{"◆", ""},
	}
	for _, tt := range tests {
		if got := createSlug(tt.input); got != tt.want {
			t.Errorf("createSlug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := map[string]int{}
	got := []string{
		uniqueSlug("plan", counts),
		uniqueSlug("plan", counts),
		uniqueSlug("plan", counts),
		uniqueSlug("", counts),
	}
	want := []string{"plan", "plan-1", "plan-2", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFinalValue(t *testing.T) {
	tests := []struct{ raw, want string }{
		{"$64.7B", "$64.7B"},
		{"22.5K", "23K"},
		{"Launch", "Launch"},
	}
	for _, tt := range tests {
		if got := finalValue(tt.raw); got != tt.want {
			t.Errorf("finalValue(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSaveMarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	if err := SaveMarkdownToFile(deck.Default(), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "*Generated:") {
		t.Error("file export should carry a generated stamp")
	}

	if err := SaveMarkdownToFile(deck.Default(), filepath.Join(t.TempDir(), "missing", "deck.md")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
