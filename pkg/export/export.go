package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/gtmdeck/pkg/debug"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
)

// Output formats understood by All.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatSQLite   = "sqlite"
)

// Formats lists every supported format.
var Formats = []string{FormatMarkdown, FormatJSON, FormatYAML, FormatSVG, FormatPNG, FormatSQLite}

// DefaultFormats is used when nothing is configured.
var DefaultFormats = []string{FormatMarkdown, FormatSVG, FormatJSON}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Options controls a full-deck export.
type Options struct {
	Dir     string
	Formats []string
	// Workers bounds concurrent writers; 0 means one per job.
	Workers int
}

// Result lists the files written, sorted.
type Result struct {
	Dir      string
	Files    []string
	Duration time.Duration
}

// Summary is a one-line description for status bars.
func (r Result) Summary() string {
	return fmt.Sprintf("exported %d files to %s", len(r.Files), r.Dir)
}

// ParseFormats splits a comma-separated list, checks every entry and drops
// duplicates. An empty list yields DefaultFormats.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if f == "md" {
			f = FormatMarkdown
		}
		if !slices.Contains(Formats, f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultFormats), nil
	}
	return out, nil
}

// All writes every requested format for the whole deck in parallel. The
// first failure cancels the remaining writers.
func All(ctx context.Context, d *deck.Deck, opts Options) (res Result, err error) {
	res = Result{Dir: opts.Dir}
	defer metrics.TimerWithCallback(metrics.Export, func(elapsed time.Duration) {
		res.Duration = elapsed
		debug.LogTiming("export", elapsed)
	})()

	if opts.Dir == "" {
		return res, fmt.Errorf("export directory is required")
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	for _, f := range formats {
		if !slices.Contains(Formats, f) {
			return res, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	type job struct {
		name string
		run  func() (string, error)
	}
	var jobs []job
	for _, f := range formats {
		switch f {
		case FormatMarkdown:
			path := filepath.Join(opts.Dir, "deck.md")
			jobs = append(jobs, job{f, func() (string, error) { return path, SaveMarkdownToFile(d, path) }})
		case FormatJSON, FormatYAML:
			format, path := deck.FormatJSON, filepath.Join(opts.Dir, "deck.json")
			if f == FormatYAML {
				format, path = deck.FormatYAML, filepath.Join(opts.Dir, "deck.yaml")
			}
			jobs = append(jobs, job{f, func() (string, error) { return path, writeEncoded(d, format, path) }})
		case FormatSQLite:
			jobs = append(jobs, job{f, func() (string, error) { return NewSQLiteExporter(d).Export(opts.Dir) }})
		case FormatSVG, FormatPNG:
			for i := range d.Sections {
				s := &d.Sections[i]
				path := filepath.Join(opts.Dir, "sections", fmt.Sprintf("%02d-%s.%s", i+1, s.ID, f))
				jobs = append(jobs, job{f + ":" + s.ID, func() (string, error) {
					return path, SaveSectionSnapshot(SnapshotOptions{Path: path, Format: f, Deck: d, Section: s})
				}})
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	paths := make([]string, len(jobs))
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := j.run()
			if err != nil {
				return fmt.Errorf("%s: %w", j.name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	sort.Strings(paths)
	res.Files = paths
	return res, nil
}

func writeEncoded(d *deck.Deck, format deck.Format, path string) error {
	data, err := deck.Encode(d, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
