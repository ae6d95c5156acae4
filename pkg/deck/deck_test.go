package deck

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
)

func TestDefaultDeckIsValid(t *testing.T) {
	d := Default()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	want := []string{"exec", "market", "problem", "competitors", "plan", "roadmap", "channels", "kpis", "cities", "risks", "whyme"}
	secs := d.NavSections()
	if len(secs) != len(want) {
		t.Fatalf("got %d sections, want %d", len(secs), len(want))
	}
	for i, id := range want {
		if secs[i].ID != id {
			t.Errorf("section %d = %q, want %q", i, secs[i].ID, id)
		}
		if secs[i].Label == "" {
			t.Errorf("section %q has no label", id)
		}
	}
	if d.StatCount() == 0 {
		t.Error("default deck has no stat cards")
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.Sections[0].Label = "changed"
	if b := Default(); b.Sections[0].Label == "changed" {
		t.Error("Default() shares state between calls")
	}
}

func TestSectionLookup(t *testing.T) {
	d := Default()
	if s := d.Section("cities"); s == nil || s.Label != "City Playbooks" {
		t.Errorf("Section(cities) = %+v", s)
	}
	if s := d.Section("nope"); s != nil {
		t.Errorf("Section(nope) = %+v, want nil", s)
	}
}

func TestStatCountIncludesNested(t *testing.T) {
	d := &Deck{Sections: []Section{{
		ID: "a", Label: "A",
		Blocks: []Block{
			{Kind: KindStats, Stats: []Stat{{Value: "1"}, {Value: "2"}}},
			{Kind: KindCities, Cities: []City{{Name: "X", KPIs: []Stat{{Value: "3K"}}}}},
			{Kind: KindCards, Cards: []Card{{Title: "c", Headline: &Stat{Value: "10+"}}, {Title: "d"}}},
			{Kind: KindPhases, Phases: []Phase{{Title: "p", Detail: []Block{
				{Kind: KindStats, Stats: []Stat{{Value: "5%"}}},
			}}}},
		},
	}}}
	if got := d.StatCount(); got != 5 {
		t.Errorf("StatCount() = %d, want 5", got)
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	src := Default()

	for _, tc := range []struct {
		name   string
		format Format
	}{
		{"deck.yaml", FormatYAML},
		{"deck.yml", FormatYAML},
		{"deck.json", FormatJSON},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(src, tc.format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Title != src.Title || len(got.Sections) != len(src.Sections) {
				t.Errorf("loaded deck %q with %d sections", got.Title, len(got.Sections))
			}
			if got.StatCount() != src.StatCount() {
				t.Errorf("StatCount = %d, want %d", got.StatCount(), src.StatCount())
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.toml")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.toml) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	doc := "title: x\nsections:\n  - id: a\n    label: A\n    colour: red\n"
	if _, err := Decode([]byte(doc), FormatYAML); err == nil {
		t.Error("expected unknown field error for yaml")
	}
	if _, err := Decode([]byte(`{"title":"x","bogus":1,"sections":[]}`), FormatJSON); err == nil {
		t.Error("expected unknown field error for json")
	}
}

func TestValidateNoSections(t *testing.T) {
	if err := (&Deck{Title: "empty"}).Validate(); !errors.Is(err, ErrNoSections) {
		t.Errorf("Validate() = %v, want ErrNoSections", err)
	}
}

func TestValidateRecordsTiming(t *testing.T) {
	prev := metrics.Enabled()
	metrics.SetEnabled(true)
	t.Cleanup(func() { metrics.SetEnabled(prev) })

	before := metrics.Validate.Count()
	if _, err := Decode(DefaultYAML(), FormatYAML); err != nil {
		t.Fatal(err)
	}
	_ = (&Deck{}).Validate()
	if got := metrics.Validate.Count() - before; got != 2 {
		t.Errorf("deck_validate recorded %d samples, want 2", got)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	d := &Deck{Sections: []Section{
		{ID: "a", Label: "A", Blocks: []Block{
			{Kind: "sparkline"},
			{Kind: KindTable, Columns: []string{"x", "y"}, Rows: [][]string{{"1"}}},
			{Kind: KindChart},
		}},
		{ID: "a"},
		{ID: "b", Label: "B", Blocks: []Block{
			{Kind: KindFunnel, Funnel: []FunnelStep{{Label: "f", Value: "1", Share: 140}}},
			{Kind: KindPhases, Phases: []Phase{{Title: "p", Detail: []Block{{Kind: KindCallout}}}}},
		}},
	}}

	err := d.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		`unknown kind "sparkline"`,
		"has 1 cells, want 2",
		"chart block has no chart",
		`duplicate id "a"`,
		"missing label",
		"outside [0,100]",
		"sections[2].blocks[1].phases[0].blocks[0]",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As(ValidationError) failed")
	}
	if ve.Path == "" {
		t.Error("ValidationError without path")
	}
}

func TestValidateChartValues(t *testing.T) {
	d := &Deck{Sections: []Section{{ID: "a", Label: "A", Blocks: []Block{{
		Kind: KindChart,
		Chart: &Chart{Type: "pie", Series: []Series{{Name: "s", Records: []Record{{Category: "c", Value: 1}}}}},
	}}}}}
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), `unknown chart type "pie"`) {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"deck.yaml", FormatYAML, true},
		{"DECK.YML", FormatYAML, true},
		{"a/b/deck.json", FormatJSON, true},
		{"deck.sqlite3", "", false},
		{"deck", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatFor(%q) = %q, %v", tt.path, got, err)
		}
	}
}
