// Package export writes a deck to static artifacts: Markdown, JSON, SVG and
// PNG section snapshots, and a queryable SQLite bundle.
//
// This file implements the SQLite bundle schema.
package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in deck_meta and checked by readers.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the sections, stats and chart_points tables.
func createCoreTables(db *sql.DB) error {
	// Sections keep their blocks as JSON so the deck round-trips exactly.
	sectionsSQL := `
		CREATE TABLE IF NOT EXISTS sections (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			icon TEXT,
			title TEXT,
			lead TEXT,
			blocks TEXT NOT NULL
		)
	`
	if _, err := db.Exec(sectionsSQL); err != nil {
		return fmt.Errorf("create sections table: %w", err)
	}

	// Denormalized stat cards; magnitude is NULL for literals that don't parse.
	statsSQL := `
		CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			section_id TEXT NOT NULL,
			label TEXT NOT NULL,
			raw TEXT NOT NULL,
			prefix TEXT,
			magnitude REAL,
			suffix TEXT,
			tone TEXT,
			FOREIGN KEY (section_id) REFERENCES sections(id)
		)
	`
	if _, err := db.Exec(statsSQL); err != nil {
		return fmt.Errorf("create stats table: %w", err)
	}

	pointsSQL := `
		CREATE TABLE IF NOT EXISTS chart_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			section_id TEXT NOT NULL,
			chart TEXT NOT NULL,
			chart_type TEXT NOT NULL,
			series TEXT NOT NULL,
			category TEXT NOT NULL,
			value REAL NOT NULL,
			FOREIGN KEY (section_id) REFERENCES sections(id)
		)
	`
	if _, err := db.Exec(pointsSQL); err != nil {
		return fmt.Errorf("create chart_points table: %w", err)
	}

	return nil
}

// createIndexes creates indexes for common queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_stats_section ON stats(section_id)`,
		`CREATE INDEX IF NOT EXISTS idx_points_section ON chart_points(section_id)`,
		`CREATE INDEX IF NOT EXISTS idx_points_chart ON chart_points(chart, series)`,
	}

	for _, q := range indexes {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// createMetaTable creates the bundle metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS deck_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create deck_meta table: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the bundle. Call it as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB) error {
	for _, q := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		if _, err := db.Exec(q); err != nil {
			continue
		}
	}

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO deck_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
