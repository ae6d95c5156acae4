package datasource

import (
	"database/sql"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/gtmdeck/pkg/debug"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/export"
)

// SQLiteReader provides read access to an exported deck bundle
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite bundle for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA cache_size = -8000",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("sqlite: %s: %v", pragma, err)
		}
	}

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// meta reads one deck_meta value; a missing key yields "".
func (r *SQLiteReader) meta(key string) (string, error) {
	var v string
	err := r.db.QueryRow(`SELECT value FROM deck_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// SchemaVersion returns the bundle's schema version.
func (r *SQLiteReader) SchemaVersion() (int, error) {
	v, err := r.meta("schema_version")
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad schema version %q", v)
	}
	return n, nil
}

// LoadDeck rebuilds and validates the deck stored in the bundle.
func (r *SQLiteReader) LoadDeck() (*deck.Deck, error) {
	version, err := r.SchemaVersion()
	if err != nil {
		return nil, err
	}
	if version > export.SchemaVersion {
		return nil, fmt.Errorf("bundle schema v%d is newer than supported v%d", version, export.SchemaVersion)
	}

	var d deck.Deck
	if d.Title, err = r.meta("title"); err != nil {
		return nil, fmt.Errorf("read title: %w", err)
	}
	if d.Subtitle, err = r.meta("subtitle"); err != nil {
		return nil, fmt.Errorf("read subtitle: %w", err)
	}
	footer, err := r.meta("footer")
	if err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	if footer != "" {
		if err := json.Unmarshal([]byte(footer), &d.Footer); err != nil {
			return nil, fmt.Errorf("decode footer: %w", err)
		}
	}

	rows, err := r.db.Query(`SELECT id, label, icon, title, lead, blocks FROM sections ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s deck.Section
		var icon, title, lead sql.NullString
		var blocks string
		if err := rows.Scan(&s.ID, &s.Label, &icon, &title, &lead, &blocks); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		s.Icon, s.Title, s.Lead = icon.String, title.String, lead.String
		if err := json.Unmarshal([]byte(blocks), &s.Blocks); err != nil {
			return nil, fmt.Errorf("decode blocks of %s: %w", s.ID, err)
		}
		d.Sections = append(d.Sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return &d, nil
}

// CountSections returns the number of stored sections
func (r *SQLiteReader) CountSections() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sections`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// StatRow is one denormalized stat card from the bundle.
type StatRow struct {
	SectionID string
	Label     string
	Raw       string
	Magnitude sql.NullFloat64
}

// Stats lists every stat card with its parsed magnitude, in deck order.
func (r *SQLiteReader) Stats() ([]StatRow, error) {
	rows, err := r.db.Query(`SELECT section_id, label, raw, magnitude FROM stats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()
	var out []StatRow
	for rows.Next() {
		var s StatRow
		if err := rows.Scan(&s.SectionID, &s.Label, &s.Raw, &s.Magnitude); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
