package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/gtmdeck/pkg/debug"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// LoadDeck resolves a deck from path. A file is loaded directly; a directory
// goes through discovery; an empty path searches the working directory. When
// discovery finds nothing valid the embedded deck is returned.
func LoadDeck(path string) (*deck.Deck, DataSource, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, DataSource{}, fmt.Errorf("deck path: %w", err)
		}
		if !info.IsDir() {
			src, err := SourceForFile(path)
			if err != nil {
				return nil, DataSource{}, err
			}
			d, err := LoadFromSource(src)
			if err != nil {
				return nil, src, err
			}
			src.Valid = true
			src.SectionCount = len(d.Sections)
			return d, src, nil
		}
	}

	d, src, err := LoadBest(path)
	if err == nil {
		return d, src, nil
	}
	debug.Log("datasource: %v, using embedded deck", err)
	return deck.Default(), Embedded(), nil
}

// LoadBest discovers sources in dir, validates them, and loads the best one.
// Unlike LoadDeck it never falls back to the embedded deck.
func LoadBest(dir string) (*deck.Deck, DataSource, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		Verbose:                debug.Enabled(),
		Logger:                 func(msg string) { debug.Log("datasource: %s", msg) },
	})
	if err != nil {
		return nil, DataSource{}, err
	}
	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}
	d, err := LoadFromSource(best)
	if err != nil {
		return nil, best, err
	}
	return d, best, nil
}

// SourceForFile describes a single deck file by its extension.
func SourceForFile(path string) (DataSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("stat deck: %w", err)
	}
	src := DataSource{Path: path, ModTime: info.ModTime(), Size: info.Size()}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite3", ".sqlite", ".db":
		src.Type, src.Priority = SourceTypeSQLite, PrioritySQLite
	case ".yaml", ".yml":
		src.Type, src.Priority = SourceTypeYAML, PriorityYAML
	case ".json":
		src.Type, src.Priority = SourceTypeJSON, PriorityJSON
	default:
		return DataSource{}, fmt.Errorf("%w: %s", deck.ErrUnsupportedFormat, filepath.Ext(path))
	}
	return src, nil
}

// LoadFromSource loads a deck from a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source DataSource) (*deck.Deck, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadDeck()

	case SourceTypeYAML, SourceTypeJSON:
		return deck.Load(source.Path)

	case SourceTypeEmbedded:
		return deck.Default(), nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
