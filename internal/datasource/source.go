// Package datasource discovers deck files in a directory, validates them, and
// selects the freshest valid one. It knows about YAML, JSON and SQLite bundle
// decks and falls back to the embedded deck when nothing usable is found.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is an exported bundle (deck.sqlite3)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeYAML is a hand-authored deck.yaml or deck.yml
	SourceTypeYAML SourceType = "yaml"
	// SourceTypeJSON is a deck.json dump
	SourceTypeJSON SourceType = "json"
	// SourceTypeEmbedded is the deck compiled into the binary
	SourceTypeEmbedded SourceType = "embedded"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite   = 100
	PriorityYAML     = 80
	PriorityJSON     = 50
	PriorityEmbedded = 0
)

// ErrNoSources is returned when discovery finds no valid deck.
var ErrNoSources = errors.New("no valid deck sources")

// candidates lists the file names discovery looks for, in priority order.
var candidates = []struct {
	name     string
	typ      SourceType
	priority int
}{
	{"deck.sqlite3", SourceTypeSQLite, PrioritySQLite},
	{"deck.yaml", SourceTypeYAML, PriorityYAML},
	{"deck.yml", SourceTypeYAML, PriorityYAML},
	{"deck.json", SourceTypeJSON, PriorityJSON},
}

// CandidateNames returns the file names discovery looks for, in priority order.
func CandidateNames() []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

// DataSource represents a potential source of deck data
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the path to the source file; empty for the embedded deck
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// SectionCount is the number of sections in the source (set during validation)
	SectionCount int `json:"section_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// Embedded describes the deck compiled into the binary.
func Embedded() DataSource {
	return DataSource{Type: SourceTypeEmbedded, Priority: PriorityEmbedded, Valid: true}
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	if s.Type == SourceTypeEmbedded {
		return "embedded deck"
	}
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, %s, modified %s, sections=%d, %s)",
		s.Path, s.Type, humanize.Bytes(uint64(max(s.Size, 0))), humanize.Time(s.ModTime), s.SectionCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory to search (uses cwd if empty)
	Dir string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all deck files in the directory, freshest first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", dir))
	}

	var sources []DataSource
	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		sources = append(sources, DataSource{
			Type:     c.typ,
			Path:     path,
			Priority: c.priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found %s: %s (mod=%s)", c.typ, path, info.ModTime().Format(time.RFC3339)))
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sortSources(sources)

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// sortSources orders by mod time (newest first), then priority.
func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}
