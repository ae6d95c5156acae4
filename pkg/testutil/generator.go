// Package testutil provides deterministic deck fixtures and shared test
// assertions. Generators are seeded so failures reproduce.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// GeneratorConfig controls deck generation.
type GeneratorConfig struct {
	Seed             int64       // Random seed (0 = 42)
	IDPrefix         string      // Prefix for section ids (default: "s")
	BlocksPerSection int         // Blocks per section (default: 3)
	KindMix          []deck.Kind // Kinds to draw from (nil = every kind)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:             42,
		IDPrefix:         "s",
		BlocksPerSection: 3,
		KindMix:          deck.Kinds,
	}
}

// Generator creates valid decks of arbitrary size.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "s"
	}
	if cfg.BlocksPerSection <= 0 {
		cfg.BlocksPerSection = 3
	}
	if len(cfg.KindMix) == 0 {
		cfg.KindMix = deck.Kinds
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Deck creates a valid deck with n sections.
func (g *Generator) Deck(n int) *deck.Deck {
	d := &deck.Deck{
		Title:    "Generated deck",
		Subtitle: fmt.Sprintf("%d sections", n),
		Footer:   []string{"generated · test fixture"},
	}
	for i := 0; i < n; i++ {
		d.Sections = append(d.Sections, g.Section(i))
	}
	return d
}

// Section creates the i-th section.
func (g *Generator) Section(i int) deck.Section {
	s := deck.Section{
		ID:    SectionID(g.cfg.IDPrefix, i),
		Label: fmt.Sprintf("Section %d", i),
		Icon:  "◆",
		Title: fmt.Sprintf("Generated section %d", i),
		Lead:  g.words(12),
	}
	for b := 0; b < g.cfg.BlocksPerSection; b++ {
		s.Blocks = append(s.Blocks, g.Block(g.cfg.KindMix[g.rng.Intn(len(g.cfg.KindMix))]))
	}
	return s
}

// Block creates a valid block of the given kind.
func (g *Generator) Block(kind deck.Kind) deck.Block {
	b := deck.Block{Kind: kind, Title: g.words(3), Tone: g.tone()}
	switch kind {
	case deck.KindStats:
		b.Stats = g.stats(1 + g.rng.Intn(4))
	case deck.KindMarkdown:
		b.Text = "**" + g.words(2) + "** " + g.words(10)
	case deck.KindCallout:
		b.Text = g.words(15)
	case deck.KindBullets:
		b.Marker = "✓"
		b.Items = g.items(2 + g.rng.Intn(4))
	case deck.KindQuotes:
		b.Quotes = []deck.Quote{{Text: g.words(8), Source: g.words(2), Alignment: g.words(4)}}
	case deck.KindTable:
		b.Columns = []string{"Name", "Value", "Notes"}
		for r := 0; r < 3; r++ {
			b.Rows = append(b.Rows, []string{g.words(1), g.StatValue(), g.words(3)})
		}
	case deck.KindChart:
		b.Chart = g.Chart([]string{deck.ChartBar, deck.ChartLine, deck.ChartShare}[g.rng.Intn(3)])
	case deck.KindPhases:
		for p := 0; p < 3; p++ {
			b.Phases = append(b.Phases, deck.Phase{
				Tag:   fmt.Sprintf("Phase %d", p+1),
				Title: g.words(2),
				Weeks: fmt.Sprintf("Weeks %d-%d", p*4+1, p*4+4),
				Tone:  g.tone(),
				Items: g.items(3),
				Detail: []deck.Block{
					{Kind: deck.KindStats, Stats: g.stats(2)},
				},
			})
		}
	case deck.KindCities:
		for c := 0; c < 2; c++ {
			b.Cities = append(b.Cities, deck.City{
				Name:          fmt.Sprintf("City %d", c),
				Tagline:       g.words(4),
				Remittances:   g.StatValue(),
				Population:    g.StatValue(),
				Neighborhoods: []deck.Neighborhood{{Name: g.words(1), Desc: g.words(4), Priority: "High"}},
				Partners:      g.items(2),
				Events:        []deck.Event{{Name: g.words(2), Desc: g.words(5)}},
				Tactics:       g.items(2),
				KPIs:          g.stats(3),
			})
		}
	case deck.KindRisks:
		b.Risks = []deck.Risk{{
			Title: g.words(2), Category: "Market", Likelihood: "Medium", Impact: "High",
			Description: g.words(8), Mitigation: g.words(6), Tone: g.tone(),
		}}
	case deck.KindFunnel:
		share := 100.0
		for f := 0; f < 4; f++ {
			b.Funnel = append(b.Funnel, deck.FunnelStep{Label: g.words(2), Value: g.StatValue(), Share: share, Tone: g.tone()})
			share = float64(int(share * g.rng.Float64()))
		}
	case deck.KindCards:
		for c := 0; c < 2; c++ {
			headline := g.stats(1)[0]
			b.Cards = append(b.Cards, deck.Card{
				Title: g.words(2), Badge: "NEW", Text: g.words(6), Tone: g.tone(),
				Headline: &headline, Items: g.items(2),
			})
		}
	}
	return b
}

// Chart creates a chart of the given type with one series (two for line).
func (g *Generator) Chart(typ string) *deck.Chart {
	c := &deck.Chart{Type: typ, Prefix: "$", Suffix: "B"}
	series := 1
	if typ == deck.ChartLine {
		series = 2
	}
	for s := 0; s < series; s++ {
		var recs []deck.Record
		for r := 0; r < 5; r++ {
			recs = append(recs, deck.Record{
				Category: fmt.Sprintf("%d", 2020+r),
				Value:    float64(g.rng.Intn(1000)) / 10,
				Tone:     g.tone(),
			})
		}
		c.Series = append(c.Series, deck.Series{Name: fmt.Sprintf("Series %d", s), Tone: g.tone(), Records: recs})
	}
	return c
}

// StatValue returns a stat literal in one of the shapes a deck uses.
func (g *Generator) StatValue() string {
	n := g.rng.Intn(1000)
	switch g.rng.Intn(6) {
	case 0:
		return fmt.Sprintf("$%d.%dB", n, g.rng.Intn(10))
	case 1:
		return fmt.Sprintf("%dM+", n)
	case 2:
		return fmt.Sprintf("~%d%%", n%100)
	case 3:
		return fmt.Sprintf("%d,%03d", 1+n, g.rng.Intn(1000))
	case 4:
		return fmt.Sprintf("<$%d", n)
	default:
		return []string{"Launch", "Free", "24/7", "N/A"}[n%4]
	}
}

func (g *Generator) stats(n int) []deck.Stat {
	out := make([]deck.Stat, n)
	for i := range out {
		out[i] = deck.Stat{Label: g.words(2), Value: g.StatValue(), Sub: g.words(4), Tone: g.tone(), Large: g.rng.Intn(2) == 0}
	}
	return out
}

func (g *Generator) items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = g.words(4 + g.rng.Intn(6))
	}
	return out
}

var vocabulary = strings.Fields(`corridor remittance trust community launch
	market growth partner zero fee transfer family network promotora event
	channel referral retention city neighborhood campaign signal wallet`)

func (g *Generator) words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = vocabulary[g.rng.Intn(len(vocabulary))]
	}
	return strings.Join(w, " ")
}

var tones = []string{"accent", "green", "red", "blue", "purple", "yellow", "cyan", ""}

func (g *Generator) tone() string {
	return tones[g.rng.Intn(len(tones))]
}

// SectionID returns the id the generator gives section i.
func SectionID(prefix string, i int) string {
	return fmt.Sprintf("%s%02d", prefix, i)
}

// Quick helpers for common cases.

// QuickDeck returns a default-config deck with n sections.
func QuickDeck(n int) *deck.Deck {
	return NewDefault().Deck(n)
}

// Single returns a one-section deck with a single stats block.
func Single() *deck.Deck {
	return &deck.Deck{
		Title: "Single",
		Sections: []deck.Section{{
			ID:     "only",
			Label:  "Only",
			Blocks: []deck.Block{{Kind: deck.KindStats, Stats: []deck.Stat{{Label: "Users", Value: "1,000"}}}},
		}},
	}
}

// Rapid generators for property tests.

// RapidStatValue draws stat literals: prefix, grouped or decimal number, and
// suffix in the shapes deck authors write.
func RapidStatValue() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		prefix := rapid.SampledFrom([]string{"", "$", "~", "<", "<$", "~$"}).Draw(t, "prefix")
		suffix := rapid.SampledFrom([]string{"", "B", "M", "M+", "K", "%", "K+"}).Draw(t, "suffix")
		var num string
		if rapid.Bool().Draw(t, "decimal") {
			num = fmt.Sprintf("%d.%d", rapid.IntRange(0, 999).Draw(t, "int"), rapid.IntRange(0, 9).Draw(t, "frac"))
		} else {
			num = fmt.Sprintf("%d", rapid.IntRange(0, 99999).Draw(t, "int"))
		}
		return prefix + num + suffix
	})
}

// RapidDeck draws a valid generated deck of 1 to maxSections sections.
func RapidDeck(maxSections int) *rapid.Generator[*deck.Deck] {
	return rapid.Custom(func(t *rapid.T) *deck.Deck {
		g := New(GeneratorConfig{
			Seed:             rapid.Int64Range(1, 1<<40).Draw(t, "seed"),
			BlocksPerSection: rapid.IntRange(1, 4).Draw(t, "blocks"),
		})
		return g.Deck(rapid.IntRange(1, maxSections).Draw(t, "sections"))
	})
}
