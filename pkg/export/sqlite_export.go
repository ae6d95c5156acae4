package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/stat"
	"github.com/vanderheijden86/gtmdeck/pkg/version"
)

// BundleFile is the file name of the SQLite bundle inside an export directory.
const BundleFile = "deck.sqlite3"

// SQLiteExporter writes a deck to a SQLite bundle that datasource can load
// back and that is queryable with any SQLite client.
type SQLiteExporter struct {
	Deck *deck.Deck
	// Now stamps exported_at; defaults to time.Now.
	Now func() time.Time
}

// NewSQLiteExporter creates a new exporter for d.
func NewSQLiteExporter(d *deck.Deck) *SQLiteExporter {
	return &SQLiteExporter{Deck: d, Now: time.Now}
}

// Export writes outputDir/deck.sqlite3, replacing any existing bundle, and
// returns its path.
func (e *SQLiteExporter) Export(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	dbPath := filepath.Join(outputDir, BundleFile)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return "", fmt.Errorf("create schema: %w", err)
	}

	if err := e.insertSections(db); err != nil {
		return "", fmt.Errorf("insert sections: %w", err)
	}

	if err := e.insertStats(db); err != nil {
		return "", fmt.Errorf("insert stats: %w", err)
	}

	if err := e.insertChartPoints(db); err != nil {
		return "", fmt.Errorf("insert chart points: %w", err)
	}

	if err := e.insertMeta(db); err != nil {
		return "", fmt.Errorf("insert meta: %w", err)
	}

	if err := OptimizeDatabase(db); err != nil {
		return "", fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return "", fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	return dbPath, nil
}

// insertSections inserts every section with its blocks encoded as JSON.
func (e *SQLiteExporter) insertSections(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sections (position, id, label, icon, title, lead, blocks)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range e.Deck.Sections {
		blocks, err := json.Marshal(s.Blocks)
		if err != nil {
			return fmt.Errorf("encode blocks of %s: %w", s.ID, err)
		}
		if _, err := stmt.Exec(i, s.ID, s.Label, s.Icon, s.Title, s.Lead, string(blocks)); err != nil {
			return fmt.Errorf("insert section %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

// insertStats stores every stat card, nested ones included, with its parsed
// parts.
func (e *SQLiteExporter) insertStats(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO stats (section_id, label, raw, prefix, magnitude, suffix, tone)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range e.Deck.Sections {
		for _, st := range CollectStats(s.Blocks) {
			var prefix, suffix sql.NullString
			var magnitude sql.NullFloat64
			if v, ok := stat.Parse(st.Value); ok {
				prefix = sql.NullString{String: v.Prefix, Valid: true}
				suffix = sql.NullString{String: v.Suffix, Valid: true}
				magnitude = sql.NullFloat64{Float64: v.Magnitude, Valid: true}
			}
			if _, err := stmt.Exec(s.ID, st.Label, st.Value, prefix, magnitude, suffix, st.Tone); err != nil {
				return fmt.Errorf("insert stat %q in %s: %w", st.Value, s.ID, err)
			}
		}
	}

	return tx.Commit()
}

// insertChartPoints flattens chart records, nested ones included.
func (e *SQLiteExporter) insertChartPoints(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO chart_points (section_id, chart, chart_type, series, category, value)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range e.Deck.Sections {
		for _, b := range CollectCharts(s.Blocks) {
			for _, series := range b.Chart.Series {
				for _, r := range series.Records {
					if _, err := stmt.Exec(s.ID, b.Title, b.Chart.Type, series.Name, r.Category, r.Value); err != nil {
						return fmt.Errorf("insert chart point %s/%s: %w", b.Title, r.Category, err)
					}
				}
			}
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	footer, err := json.Marshal(e.Deck.Footer)
	if err != nil {
		return err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	meta := [][2]string{
		{"schema_version", strconv.Itoa(SchemaVersion)},
		{"title", e.Deck.Title},
		{"subtitle", e.Deck.Subtitle},
		{"footer", string(footer)},
		{"exported_at", now().UTC().Format(time.RFC3339)},
		{"generator", "gtmdeck " + version.Version},
	}
	for _, kv := range meta {
		if err := InsertMetaValue(db, kv[0], kv[1]); err != nil {
			return fmt.Errorf("meta %s: %w", kv[0], err)
		}
	}
	return nil
}

// CollectStats returns every stat card in blocks in document order, including
// city KPIs, card headlines and phase details.
func CollectStats(blocks []deck.Block) []deck.Stat {
	var out []deck.Stat
	for _, b := range blocks {
		out = append(out, b.Stats...)
		for _, c := range b.Cards {
			if c.Headline != nil {
				out = append(out, *c.Headline)
			}
		}
		for _, c := range b.Cities {
			out = append(out, c.KPIs...)
		}
		for _, p := range b.Phases {
			out = append(out, CollectStats(p.Detail)...)
		}
	}
	return out
}

// CollectCharts returns every chart block in blocks, including phase details.
func CollectCharts(blocks []deck.Block) []deck.Block {
	var out []deck.Block
	for _, b := range blocks {
		if b.Kind == deck.KindChart && b.Chart != nil {
			out = append(out, b)
		}
		for _, p := range b.Phases {
			out = append(out, CollectCharts(p.Detail)...)
		}
	}
	return out
}
