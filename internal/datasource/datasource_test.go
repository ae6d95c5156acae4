package datasource

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/export"
	"github.com/vanderheijden86/gtmdeck/pkg/testutil"
)

func writeDeck(t *testing.T, dir, name string, d *deck.Deck, mod time.Time) string {
	t.Helper()
	format := deck.FormatYAML
	if filepath.Ext(name) == ".json" {
		format = deck.FormatJSON
	}
	data, err := deck.Encode(d, format)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeBundle(t *testing.T, dir string, d *deck.Deck, mod time.Time) string {
	t.Helper()
	path, err := export.NewSQLiteExporter(d).Export(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func sameDeck(t *testing.T, got, want *deck.Deck) {
	t.Helper()
	a, err := deck.Encode(got, deck.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	b, err := deck.Encode(want, deck.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("decks differ after round trip")
	}
}

func TestDiscoverSourcesOrder(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	d := deck.Default()

	writeDeck(t, dir, "deck.json", d, base.Add(2*time.Minute))
	writeDeck(t, dir, "deck.yaml", d, base)
	writeBundle(t, dir, d, base)

	sources, err := DiscoverSources(DiscoveryOptions{Dir: dir, ValidateAfterDiscovery: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 3 {
		t.Fatalf("found %d sources, want 3", len(sources))
	}
	want := []SourceType{SourceTypeJSON, SourceTypeSQLite, SourceTypeYAML}
	for i, s := range sources {
		if s.Type != want[i] {
			t.Errorf("source %d = %s, want %s", i, s.Type, want[i])
		}
		if !s.Valid || s.SectionCount != len(d.Sections) {
			t.Errorf("%s: valid=%v sections=%d", s.Type, s.Valid, s.SectionCount)
		}
	}
}

func TestDiscoverSourcesSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)

	writeDeck(t, dir, "deck.yaml", deck.Default(), now.Add(-time.Hour))
	if err := os.WriteFile(filepath.Join(dir, "deck.json"), []byte(`{"title": "x", "sections": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deck.yml"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var logged []string
	opts := DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		Verbose:                true,
		Logger:                 func(msg string) { logged = append(logged, msg) },
	}
	sources, err := DiscoverSources(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0].Type != SourceTypeYAML {
		t.Fatalf("sources = %v", sources)
	}
	if len(logged) == 0 {
		t.Error("verbose discovery should log")
	}

	opts.IncludeInvalid = true
	all, err := DiscoverSources(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("IncludeInvalid found %d, want 3", len(all))
	}
	for _, s := range all {
		if filepath.Base(s.Path) == "deck.yml" && s.ValidationError != "empty file" {
			t.Errorf("empty file error = %q", s.ValidationError)
		}
		if filepath.Base(s.Path) == "deck.json" && s.Valid {
			t.Error("deck with no sections should be invalid")
		}
	}
}

func TestSelectBestSource(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		sources []DataSource
		want    SourceType
		wantErr bool
	}{
		{"none", nil, "", true},
		{"all invalid", []DataSource{{Type: SourceTypeYAML, ModTime: t0}}, "", true},
		{"freshest wins", []DataSource{
			{Type: SourceTypeSQLite, Priority: PrioritySQLite, ModTime: t0, Valid: true},
			{Type: SourceTypeJSON, Priority: PriorityJSON, ModTime: t0.Add(time.Second), Valid: true},
		}, SourceTypeJSON, false},
		{"tie goes to priority", []DataSource{
			{Type: SourceTypeJSON, Priority: PriorityJSON, ModTime: t0, Valid: true},
			{Type: SourceTypeSQLite, Priority: PrioritySQLite, ModTime: t0, Valid: true},
			{Type: SourceTypeYAML, Priority: PriorityYAML, ModTime: t0, Valid: true},
		}, SourceTypeSQLite, false},
		{"fresher invalid ignored", []DataSource{
			{Type: SourceTypeYAML, Priority: PriorityYAML, ModTime: t0, Valid: true},
			{Type: SourceTypeSQLite, Priority: PrioritySQLite, ModTime: t0.Add(time.Hour)},
		}, SourceTypeYAML, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectBestSource(tt.sources)
			if tt.wantErr {
				if !errors.Is(err, ErrNoSources) {
					t.Errorf("err = %v, want ErrNoSources", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Type != tt.want {
				t.Errorf("selected %s, want %s", got.Type, tt.want)
			}
		})
	}
}

func TestLoadDeckFile(t *testing.T) {
	dir := t.TempDir()
	d := deck.Default()
	d.Title = "Custom"
	path := writeDeck(t, dir, "pitch.yml", d, time.Now())

	got, src, err := LoadDeck(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Custom" || src.Type != SourceTypeYAML || !src.Valid {
		t.Errorf("title=%q source=%+v", got.Title, src)
	}

	if _, _, err := LoadDeck(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	txt := filepath.Join(dir, "deck.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadDeck(txt); !errors.Is(err, deck.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadDeckDirectoryAndFallback(t *testing.T) {
	empty := t.TempDir()
	got, src, err := LoadDeck(empty)
	if err != nil {
		t.Fatal(err)
	}
	if src.Type != SourceTypeEmbedded || len(got.Sections) != len(deck.Default().Sections) {
		t.Errorf("empty dir should fall back to the embedded deck, got %s", src)
	}

	dir := t.TempDir()
	d := deck.Default()
	d.Sections = d.Sections[:3]
	writeBundle(t, dir, d, time.Now())
	got, src, err = LoadDeck(dir)
	if err != nil {
		t.Fatal(err)
	}
	if src.Type != SourceTypeSQLite || len(got.Sections) != 3 {
		t.Errorf("loaded %d sections from %s", len(got.Sections), src)
	}
}

func TestLoadBestDoesNotFallBack(t *testing.T) {
	if _, _, err := LoadBest(t.TempDir()); !errors.Is(err, ErrNoSources) {
		t.Errorf("LoadBest on an empty dir = %v, want ErrNoSources", err)
	}

	dir := t.TempDir()
	writeDeck(t, dir, "deck.yaml", deck.Default(), time.Now().Add(-time.Hour))
	writeDeck(t, dir, "deck.json", deck.Default(), time.Now())
	_, src, err := LoadBest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if src.Type != SourceTypeJSON {
		t.Errorf("LoadBest picked %s, want the fresher JSON deck", src)
	}
}

func TestCandidateNames(t *testing.T) {
	got := strings.Join(CandidateNames(), ",")
	if got != "deck.sqlite3,deck.yaml,deck.yml,deck.json" {
		t.Errorf("CandidateNames() = %s", got)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := deck.Default()
	path := writeBundle(t, dir, want, time.Now())

	src, err := SourceForFile(path)
	if err != nil {
		t.Fatal(err)
	}
	reader, err := NewSQLiteReader(src)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	v, err := reader.SchemaVersion()
	if err != nil || v != export.SchemaVersion {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}
	n, err := reader.CountSections()
	if err != nil || n != len(want.Sections) {
		t.Errorf("CountSections = %d, %v", n, err)
	}
	got, err := reader.LoadDeck()
	if err != nil {
		t.Fatal(err)
	}
	sameDeck(t, got, want)

	stats, err := reader.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != want.StatCount() {
		t.Errorf("Stats() = %d rows, want %d", len(stats), want.StatCount())
	}
	if stats[0].SectionID != "exec" || !stats[0].Magnitude.Valid {
		t.Errorf("first stat = %+v", stats[0])
	}
}

func TestSQLiteReaderRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir, deck.Default(), time.Now())

	// Bump the stored version with a writable handle.
	db, err := openWritable(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE deck_meta SET value = '99' WHERE key = 'schema_version'`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	_, err = LoadFromSource(DataSource{Type: SourceTypeSQLite, Path: path})
	if err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("err = %v, want newer-schema error", err)
	}
}

func TestNewSQLiteReaderWrongType(t *testing.T) {
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeYAML}); err == nil {
		t.Error("expected error for non-SQLite source")
	}
}

func TestSourceForFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		want SourceType
	}{
		{"a.sqlite3", SourceTypeSQLite},
		{"a.db", SourceTypeSQLite},
		{"a.YAML", SourceTypeYAML},
		{"a.json", SourceTypeJSON},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		src, err := SourceForFile(path)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if src.Type != tt.want || src.Size != 1 {
			t.Errorf("%s: %+v", tt.name, src)
		}
	}
}

func TestDataSourceString(t *testing.T) {
	if got := Embedded().String(); got != "embedded deck" {
		t.Errorf("Embedded().String() = %q", got)
	}
	s := DataSource{Type: SourceTypeYAML, Path: "deck.yaml", Size: 2048, ModTime: time.Now(), ValidationError: "bad"}
	got := s.String()
	for _, want := range []string{"deck.yaml", "yaml", "2.0 kB", "invalid: bad"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestLoadDeckGeneratedFiles(t *testing.T) {
	for _, name := range []string{"pilot.yaml", "pilot.json"} {
		t.Run(name, func(t *testing.T) {
			want := testutil.QuickDeck(3)
			path := testutil.WriteDeckFile(t, t.TempDir(), name, want)

			got, src, err := LoadDeck(path)
			if err != nil {
				t.Fatalf("LoadDeck: %v", err)
			}
			if !src.Valid || src.SectionCount != 3 {
				t.Errorf("source = %+v", src)
			}
			testutil.AssertSectionCount(t, got, 3)
			testutil.AssertSectionOrder(t, got, testutil.SectionIDs(want)...)
		})
	}
}
