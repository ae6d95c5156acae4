package export

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

func exportDefault(t *testing.T) (*deck.Deck, *sql.DB) {
	t.Helper()
	d := deck.Default()
	exp := NewSQLiteExporter(d)
	exp.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	path, err := exp.Export(t.TempDir())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != BundleFile {
		t.Errorf("bundle path = %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return d, db
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestSQLiteExportSections(t *testing.T) {
	d, db := exportDefault(t)

	if got := count(t, db, `SELECT COUNT(*) FROM sections`); got != len(d.Sections) {
		t.Errorf("sections = %d, want %d", got, len(d.Sections))
	}

	rows, err := db.Query(`SELECT id, blocks FROM sections ORDER BY position`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	i := 0
	for rows.Next() {
		var id, blocksJSON string
		if err := rows.Scan(&id, &blocksJSON); err != nil {
			t.Fatal(err)
		}
		if id != d.Sections[i].ID {
			t.Errorf("position %d holds %s, want %s", i, id, d.Sections[i].ID)
		}
		var blocks []deck.Block
		if err := json.Unmarshal([]byte(blocksJSON), &blocks); err != nil {
			t.Fatalf("decode blocks of %s: %v", id, err)
		}
		if len(blocks) != len(d.Sections[i].Blocks) {
			t.Errorf("%s: %d blocks, want %d", id, len(blocks), len(d.Sections[i].Blocks))
		}
		i++
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLiteExportStats(t *testing.T) {
	d, db := exportDefault(t)

	if got := count(t, db, `SELECT COUNT(*) FROM stats`); got != d.StatCount() {
		t.Errorf("stats = %d, want %d", got, d.StatCount())
	}

	var prefix, suffix string
	var magnitude float64
	err := db.QueryRow(`SELECT prefix, magnitude, suffix FROM stats WHERE raw = '$64.7B' LIMIT 1`).Scan(&prefix, &magnitude, &suffix)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != "$" || magnitude != 64.7 || suffix != "B" {
		t.Errorf("parsed parts = %q %v %q", prefix, magnitude, suffix)
	}
}

func TestSQLiteExportChartPoints(t *testing.T) {
	d, db := exportDefault(t)

	want := 0
	for _, s := range d.Sections {
		for _, b := range CollectCharts(s.Blocks) {
			for _, series := range b.Chart.Series {
				want += len(series.Records)
			}
		}
	}
	if want == 0 {
		t.Fatal("default deck should contain charts")
	}
	if got := count(t, db, `SELECT COUNT(*) FROM chart_points`); got != want {
		t.Errorf("chart points = %d, want %d", got, want)
	}
	if got := count(t, db, `SELECT COUNT(*) FROM chart_points WHERE section_id = 'market' AND chart_type = 'line'`); got == 0 {
		t.Error("market line chart points missing")
	}
}

func TestSQLiteExportMeta(t *testing.T) {
	d, db := exportDefault(t)

	meta := map[string]string{}
	rows, err := db.Query(`SELECT key, value FROM deck_meta`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			t.Fatal(err)
		}
		meta[k] = v
	}

	if meta["schema_version"] != strconv.Itoa(SchemaVersion) {
		t.Errorf("schema_version = %q", meta["schema_version"])
	}
	if meta["title"] != d.Title {
		t.Errorf("title = %q", meta["title"])
	}
	if meta["exported_at"] != "2025-06-01T12:00:00Z" {
		t.Errorf("exported_at = %q", meta["exported_at"])
	}
	var footer []string
	if err := json.Unmarshal([]byte(meta["footer"]), &footer); err != nil || len(footer) != len(d.Footer) {
		t.Errorf("footer = %q (%v)", meta["footer"], err)
	}
}

func TestSQLiteExportReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, BundleFile)
	if err := os.WriteFile(stale, []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSQLiteExporter(deck.Default()).Export(dir); err != nil {
		t.Fatalf("Export over stale file: %v", err)
	}
}

func TestCollectStatsNested(t *testing.T) {
	blocks := []deck.Block{
		{Kind: deck.KindStats, Stats: []deck.Stat{{Label: "a", Value: "1"}}},
		{Kind: deck.KindCards, Cards: []deck.Card{{Title: "c", Headline: &deck.Stat{Label: "h", Value: "2"}}, {Title: "d"}}},
		{Kind: deck.KindCities, Cities: []deck.City{{Name: "LA", KPIs: []deck.Stat{{Label: "k", Value: "3"}}}}},
		{Kind: deck.KindPhases, Phases: []deck.Phase{{Tag: "P1", Detail: []deck.Block{
			{Kind: deck.KindStats, Stats: []deck.Stat{{Label: "p", Value: "4"}}},
			{Kind: deck.KindChart, Chart: &deck.Chart{Type: deck.ChartBar}},
		}}}},
	}

	stats := CollectStats(blocks)
	var got []string
	for _, s := range stats {
		got = append(got, s.Value)
	}
	if len(got) != 4 || got[0] != "1" || got[1] != "2" || got[2] != "3" || got[3] != "4" {
		t.Errorf("CollectStats order = %v", got)
	}
	if n := len(CollectCharts(blocks)); n != 1 {
		t.Errorf("CollectCharts found %d, want 1", n)
	}
}
