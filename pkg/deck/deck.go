// Package deck defines the content model of a go-to-market deck: an ordered
// list of sections, each made of typed blocks (stat cards, tables, charts,
// city playbooks and so on). Deck content is static, hand-authored data.
package deck

import (
	"github.com/vanderheijden86/gtmdeck/pkg/nav"
)

// Kind identifies a block type.
type Kind string

const (
	KindStats    Kind = "stats"
	KindMarkdown Kind = "markdown"
	KindBullets  Kind = "bullets"
	KindQuotes   Kind = "quotes"
	KindTable    Kind = "table"
	KindChart    Kind = "chart"
	KindPhases   Kind = "phases"
	KindCities   Kind = "cities"
	KindRisks    Kind = "risks"
	KindFunnel   Kind = "funnel"
	KindCards    Kind = "cards"
	KindCallout  Kind = "callout"
)

// Kinds lists every known block kind.
var Kinds = []Kind{
	KindStats, KindMarkdown, KindBullets, KindQuotes, KindTable, KindChart,
	KindPhases, KindCities, KindRisks, KindFunnel, KindCards, KindCallout,
}

// Chart types.
const (
	ChartBar   = "bar"
	ChartLine  = "line"
	ChartShare = "share"
)

// Deck is a complete presentation.
type Deck struct {
	Title    string    `yaml:"title" json:"title"`
	Subtitle string    `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Footer   []string  `yaml:"footer,omitempty" json:"footer,omitempty"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Section is one navigable page of the deck.
type Section struct {
	ID     string  `yaml:"id" json:"id"`
	Label  string  `yaml:"label" json:"label"`
	Icon   string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	Lead   string  `yaml:"lead,omitempty" json:"lead,omitempty"`
	Blocks []Block `yaml:"blocks" json:"blocks"`
}

// Block is a tagged union; Kind selects which fields are meaningful.
type Block struct {
	Kind   Kind   `yaml:"kind" json:"kind"`
	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
	Tone   string `yaml:"tone,omitempty" json:"tone,omitempty"`
	Text   string `yaml:"text,omitempty" json:"text,omitempty"`
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	Marker  string       `yaml:"marker,omitempty" json:"marker,omitempty"`
	Items   []string     `yaml:"items,omitempty" json:"items,omitempty"`
	Stats   []Stat       `yaml:"stats,omitempty" json:"stats,omitempty"`
	Quotes  []Quote      `yaml:"quotes,omitempty" json:"quotes,omitempty"`
	Columns []string     `yaml:"columns,omitempty" json:"columns,omitempty"`
	Rows    [][]string   `yaml:"rows,omitempty" json:"rows,omitempty"`
	Chart   *Chart       `yaml:"chart,omitempty" json:"chart,omitempty"`
	Phases  []Phase      `yaml:"phases,omitempty" json:"phases,omitempty"`
	Cities  []City       `yaml:"cities,omitempty" json:"cities,omitempty"`
	Risks   []Risk       `yaml:"risks,omitempty" json:"risks,omitempty"`
	Funnel  []FunnelStep `yaml:"funnel,omitempty" json:"funnel,omitempty"`
	Cards   []Card       `yaml:"cards,omitempty" json:"cards,omitempty"`
}

// Stat is a headline number card. Value is displayed through the stat
// formatter and animates when it parses as a number.
type Stat struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	Sub   string `yaml:"sub,omitempty" json:"sub,omitempty"`
	Tone  string `yaml:"tone,omitempty" json:"tone,omitempty"`
	Large bool   `yaml:"large,omitempty" json:"large,omitempty"`
}

type Quote struct {
	Text      string `yaml:"text" json:"text"`
	Source    string `yaml:"source,omitempty" json:"source,omitempty"`
	Alignment string `yaml:"alignment,omitempty" json:"alignment,omitempty"`
}

// Chart is a static chart over one or more series of records.
type Chart struct {
	Type   string   `yaml:"type" json:"type"`
	Prefix string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix string   `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Series []Series `yaml:"series" json:"series"`
}

type Series struct {
	Name    string   `yaml:"name" json:"name"`
	Tone    string   `yaml:"tone,omitempty" json:"tone,omitempty"`
	Records []Record `yaml:"records" json:"records"`
}

// Record is one chart data point.
type Record struct {
	Category string  `yaml:"category" json:"category"`
	Value    float64 `yaml:"value" json:"value"`
	Tone     string  `yaml:"tone,omitempty" json:"tone,omitempty"`
	Note     string  `yaml:"note,omitempty" json:"note,omitempty"`
}

// Phase is a selectable step of a phased plan with its own detail blocks.
type Phase struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Title  string   `yaml:"title" json:"title"`
	Weeks  string   `yaml:"weeks,omitempty" json:"weeks,omitempty"`
	Tone   string   `yaml:"tone,omitempty" json:"tone,omitempty"`
	Items  []string `yaml:"items,omitempty" json:"items,omitempty"`
	Detail []Block  `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// City is a selectable city playbook.
type City struct {
	Name          string         `yaml:"name" json:"name"`
	Tagline       string         `yaml:"tagline,omitempty" json:"tagline,omitempty"`
	Remittances   string         `yaml:"remittances,omitempty" json:"remittances,omitempty"`
	Population    string         `yaml:"population,omitempty" json:"population,omitempty"`
	Why           string         `yaml:"why,omitempty" json:"why,omitempty"`
	Neighborhoods []Neighborhood `yaml:"neighborhoods,omitempty" json:"neighborhoods,omitempty"`
	Partners      []string       `yaml:"partners,omitempty" json:"partners,omitempty"`
	Events        []Event        `yaml:"events,omitempty" json:"events,omitempty"`
	Tactics       []string       `yaml:"tactics,omitempty" json:"tactics,omitempty"`
	KPIs          []Stat         `yaml:"kpis,omitempty" json:"kpis,omitempty"`
}

type Neighborhood struct {
	Name     string `yaml:"name" json:"name"`
	Desc     string `yaml:"desc,omitempty" json:"desc,omitempty"`
	Priority string `yaml:"priority,omitempty" json:"priority,omitempty"`
}

type Event struct {
	Name string `yaml:"name" json:"name"`
	Desc string `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// Risk is one entry of a risk matrix.
type Risk struct {
	Title       string `yaml:"title" json:"title"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
	Likelihood  string `yaml:"likelihood,omitempty" json:"likelihood,omitempty"`
	Impact      string `yaml:"impact,omitempty" json:"impact,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Mitigation  string `yaml:"mitigation,omitempty" json:"mitigation,omitempty"`
	Tone        string `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// FunnelStep is one narrowing row of a funnel; Share is a percentage of the
// first row.
type FunnelStep struct {
	Label string  `yaml:"label" json:"label"`
	Value string  `yaml:"value" json:"value"`
	Share float64 `yaml:"share" json:"share"`
	Tone  string  `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// Card is a free-form panel with an optional badge, headline stat and list.
type Card struct {
	Title    string   `yaml:"title" json:"title"`
	Icon     string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Badge    string   `yaml:"badge,omitempty" json:"badge,omitempty"`
	Text     string   `yaml:"text,omitempty" json:"text,omitempty"`
	Tone     string   `yaml:"tone,omitempty" json:"tone,omitempty"`
	Headline *Stat    `yaml:"headline,omitempty" json:"headline,omitempty"`
	Items    []string `yaml:"items,omitempty" json:"items,omitempty"`
}

// NavSections returns the fixed navigation list in deck order.
func (d *Deck) NavSections() []nav.Section {
	out := make([]nav.Section, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = nav.Section{ID: s.ID, Label: s.Label, Icon: s.Icon}
	}
	return out
}

// Section returns the section with id, or nil.
func (d *Deck) Section(id string) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i]
		}
	}
	return nil
}

// StatCount returns how many stat cards the deck holds, city KPIs and card
// headlines included.
func (d *Deck) StatCount() int {
	n := 0
	for _, s := range d.Sections {
		n += countStats(s.Blocks)
	}
	return n
}

func countStats(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		n += len(b.Stats)
		for _, c := range b.Cities {
			n += len(c.KPIs)
		}
		for _, c := range b.Cards {
			if c.Headline != nil {
				n++
			}
		}
		for _, p := range b.Phases {
			n += countStats(p.Detail)
		}
	}
	return n
}
