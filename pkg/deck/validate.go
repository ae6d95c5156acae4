package deck

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
)

// ErrNoSections is returned for a deck without sections.
var ErrNoSections = errors.New("deck has no sections")

// ValidationError locates a single problem in a deck.
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	return e.Path + ": " + e.Msg
}

// Validate reports every structural problem in the deck at once, joined with
// errors.Join.
func (d *Deck) Validate() error {
	defer metrics.Timer(metrics.Validate)()
	if len(d.Sections) == 0 {
		return ErrNoSections
	}
	v := &validator{}
	seen := make(map[string]bool, len(d.Sections))
	for i, s := range d.Sections {
		path := fmt.Sprintf("sections[%d]", i)
		if s.ID == "" {
			v.add(path, "missing id")
		} else if seen[s.ID] {
			v.add(path, fmt.Sprintf("duplicate id %q", s.ID))
		}
		seen[s.ID] = true
		if s.Label == "" {
			v.add(path, "missing label")
		}
		v.blocks(path, s.Blocks)
	}
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) add(path, msg string) {
	v.errs = append(v.errs, &ValidationError{Path: path, Msg: msg})
}

func (v *validator) blocks(parent string, blocks []Block) {
	for i, b := range blocks {
		v.block(fmt.Sprintf("%s.blocks[%d]", parent, i), b)
	}
}

func (v *validator) block(path string, b Block) {
	if !slices.Contains(Kinds, b.Kind) {
		v.add(path, fmt.Sprintf("unknown kind %q", b.Kind))
		return
	}
	switch b.Kind {
	case KindStats:
		if len(b.Stats) == 0 {
			v.add(path, "stats block has no stats")
		}
		v.stats(path, b.Stats)
	case KindMarkdown, KindCallout:
		if b.Text == "" {
			v.add(path, string(b.Kind)+" block has no text")
		}
	case KindBullets:
		if len(b.Items) == 0 {
			v.add(path, "bullets block has no items")
		}
	case KindQuotes:
		if len(b.Quotes) == 0 {
			v.add(path, "quotes block has no quotes")
		}
	case KindTable:
		if len(b.Columns) == 0 {
			v.add(path, "table has no columns")
		}
		for r, row := range b.Rows {
			if len(row) != len(b.Columns) {
				v.add(fmt.Sprintf("%s.rows[%d]", path, r), fmt.Sprintf("has %d cells, want %d", len(row), len(b.Columns)))
			}
		}
	case KindChart:
		v.chart(path, b.Chart)
	case KindPhases:
		if len(b.Phases) == 0 {
			v.add(path, "phases block has no phases")
		}
		for p, ph := range b.Phases {
			pp := fmt.Sprintf("%s.phases[%d]", path, p)
			if ph.Title == "" {
				v.add(pp, "missing title")
			}
			v.blocks(pp, ph.Detail)
		}
	case KindCities:
		if len(b.Cities) == 0 {
			v.add(path, "cities block has no cities")
		}
		for c, city := range b.Cities {
			cp := fmt.Sprintf("%s.cities[%d]", path, c)
			if city.Name == "" {
				v.add(cp, "missing name")
			}
			v.stats(cp, city.KPIs)
		}
	case KindRisks:
		if len(b.Risks) == 0 {
			v.add(path, "risks block has no risks")
		}
	case KindFunnel:
		for f, step := range b.Funnel {
			if step.Share < 0 || step.Share > 100 {
				v.add(fmt.Sprintf("%s.funnel[%d]", path, f), fmt.Sprintf("share %v outside [0,100]", step.Share))
			}
		}
	case KindCards:
		if len(b.Cards) == 0 {
			v.add(path, "cards block has no cards")
		}
	}
}

func (v *validator) stats(path string, stats []Stat) {
	for i, s := range stats {
		if s.Value == "" {
			v.add(fmt.Sprintf("%s.stats[%d]", path, i), "missing value")
		}
	}
}

func (v *validator) chart(path string, c *Chart) {
	if c == nil {
		v.add(path, "chart block has no chart")
		return
	}
	switch c.Type {
	case ChartBar, ChartLine, ChartShare:
	default:
		v.add(path, fmt.Sprintf("unknown chart type %q", c.Type))
	}
	if len(c.Series) == 0 {
		v.add(path, "chart has no series")
	}
	for i, s := range c.Series {
		for j, r := range s.Records {
			if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
				v.add(fmt.Sprintf("%s.series[%d].records[%d]", path, i, j), "value is not finite")
			}
		}
	}
}
