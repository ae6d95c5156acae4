package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/gtmdeck/pkg/anim"
	"github.com/vanderheijden86/gtmdeck/pkg/chart"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// counterSpot locates an animated stat value in rendered content.
type counterSpot struct {
	key    string
	raw    string
	region anim.Region
}

// hitZone is a clickable selector tab in content coordinates, [x0, x1).
type hitZone struct {
	line   int
	x0, x1 int
	block  int
	index  int
}

// sectionLayout is one rendered section, line by line.
type sectionLayout struct {
	lines []string
	spots []counterSpot
	hits  []hitZone
}

// add appends s and returns the index of its first line.
func (l *sectionLayout) add(s string) int {
	top := len(l.lines)
	l.lines = append(l.lines, strings.Split(s, "\n")...)
	return top
}

func (l *sectionLayout) blank() {
	if n := len(l.lines); n > 0 && l.lines[n-1] == "" {
		return
	}
	l.lines = append(l.lines, "")
}

func (l *sectionLayout) String() string {
	return strings.Join(l.lines, "\n")
}

// hitAt returns the selector tab at content position (line, x).
func (l *sectionLayout) hitAt(line, x int) (hitZone, bool) {
	for _, h := range l.hits {
		if h.line == line && x >= h.x0 && x < h.x1 {
			return h, true
		}
	}
	return hitZone{}, false
}

// valueFunc returns the text shown for the stat at key whose final value is
// raw.
type valueFunc func(key, raw string) string

// finalValues shows every stat at its final value.
func finalValues(_, raw string) string { return raw }

// sectionRenderer draws a deck section into a sectionLayout.
type sectionRenderer struct {
	theme    Theme
	width    int
	md       *MarkdownRenderer
	value    valueFunc
	selected func(block int) int
	// expand renders every phase and city in turn instead of the selected
	// one, for static output.
	expand bool
}

func (r sectionRenderer) render(s *deck.Section) *sectionLayout {
	l := &sectionLayout{}
	if s == nil {
		return l
	}
	t := r.theme

	title := s.Title
	if title == "" {
		title = s.Label
	}
	if s.Icon != "" {
		title = s.Icon + " " + title
	}
	l.add(t.AccentBold.Render(strings.ToUpper(s.Label)))
	l.add(t.Title.Width(r.width).Render(title))
	if s.Lead != "" {
		l.add(t.Lead.Width(r.width).Render(s.Lead))
	}
	l.add(RenderDivider(t, r.width))
	l.blank()

	for i, b := range s.Blocks {
		r.block(l, fmt.Sprintf("b%d", i), i, b, r.width)
		l.blank()
	}
	return l
}

// block renders b. sel is the top-level block index for selectable blocks,
// or -1 when b is nested and its selection is fixed.
func (r sectionRenderer) block(l *sectionLayout, key string, sel int, b deck.Block, width int) {
	t := r.theme
	if b.Title != "" && b.Kind != deck.KindCallout && b.Kind != deck.KindMarkdown {
		l.add(t.Renderer.NewStyle().Foreground(t.Tone(b.Tone)).Bold(true).Width(width).Render(b.Title))
	}

	switch b.Kind {
	case deck.KindStats:
		r.statRow(l, key, b.Stats, width)
	case deck.KindMarkdown:
		if b.Title != "" {
			l.add(t.Title.Render(b.Title))
		}
		md := r.md
		if md == nil || md.Width() != width {
			md = NewMarkdownRenderer(width)
		}
		l.add(md.Render(b.Text))
	case deck.KindBullets:
		r.bullets(l, b, width)
	case deck.KindQuotes:
		r.quotes(l, b.Quotes, width)
	case deck.KindTable:
		l.add(r.table(b.Columns, b.Rows, width))
	case deck.KindChart:
		l.add(chart.Render(b.Chart, width, t.ToneStyle))
	case deck.KindPhases:
		r.phases(l, key, sel, b.Phases, width)
	case deck.KindCities:
		r.cities(l, key, sel, b.Cities, width)
	case deck.KindRisks:
		r.risks(l, b.Risks, width)
	case deck.KindFunnel:
		r.funnel(l, b.Funnel, width)
	case deck.KindCards:
		r.cards(l, key, b.Cards, width)
	case deck.KindCallout:
		r.callout(l, b, width)
	}

	if b.Source != "" {
		l.add(t.MutedText.Italic(true).Width(width).Render(b.Source))
	}
}

func (r sectionRenderer) statRow(l *sectionLayout, key string, stats []deck.Stat, width int) {
	perRow := min(len(stats), 4)
	switch {
	case width < 34:
		perRow = 1
	case width < 64:
		perRow = min(perRow, 2)
	}
	for start := 0; start < len(stats); start += perRow {
		end := min(start+perRow, len(stats))
		widths := columnWidths(width, end-start, 1)
		cards := make([]string, 0, 2*(end-start))
		for j := start; j < end; j++ {
			if j > start {
				cards = append(cards, " ")
			}
			k := fmt.Sprintf("%s.s%d", key, j)
			cards = append(cards, r.statCard(stats[j], r.value(k, stats[j].Value), widths[j-start]))
		}
		top := l.add(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		for j := start; j < end; j++ {
			// Border line, then label, then value.
			l.spots = append(l.spots, counterSpot{
				key:    fmt.Sprintf("%s.s%d", key, j),
				raw:    stats[j].Value,
				region: anim.Region{Top: top + 2, Height: 1},
			})
		}
	}
}

func (r sectionRenderer) statCard(s deck.Stat, shown string, width int) string {
	t := r.theme
	inner := max(width-4, 1)
	valueStyle := t.Renderer.NewStyle().Foreground(t.Tone(s.Tone)).Bold(true)
	lines := []string{
		t.MutedText.Render(truncate(strings.ToUpper(s.Label), inner)),
		valueStyle.Render(truncate(shown, inner)),
	}
	for _, sub := range wrapText(s.Sub, inner) {
		lines = append(lines, t.SubText.Render(sub))
	}
	return CardStyle(t, "", width).Render(strings.Join(lines, "\n"))
}

func (r sectionRenderer) bullets(l *sectionLayout, b deck.Block, width int) {
	t := r.theme
	marker := b.Marker
	if marker == "" {
		marker = "•"
	}
	indent := runewidth.StringWidth(marker) + 1
	markerStyle := t.Renderer.NewStyle().Foreground(t.Tone(b.Tone)).Bold(true)
	for _, item := range b.Items {
		for i, line := range wrapText(item, max(width-indent, 8)) {
			prefix := strings.Repeat(" ", indent)
			if i == 0 {
				prefix = markerStyle.Render(marker) + " "
			}
			l.add(prefix + t.Base.Render(line))
		}
	}
}

func (r sectionRenderer) quotes(l *sectionLayout, quotes []deck.Quote, width int) {
	t := r.theme
	box := t.Renderer.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Accent).
		PaddingLeft(1).
		Width(max(width-1, 8))
	for i, q := range quotes {
		if i > 0 {
			l.blank()
		}
		parts := []string{t.Base.Italic(true).Render("“" + q.Text + "”")}
		if q.Source != "" {
			parts = append(parts, t.MutedText.Render("— "+q.Source))
		}
		if q.Alignment != "" {
			parts = append(parts, t.AccentBold.Render("→ ")+t.SubText.Render(q.Alignment))
		}
		l.add(box.Render(strings.Join(parts, "\n")))
	}
}

// table lays out columns at their natural width, shrinking the widest
// columns until the row fits.
func (r sectionRenderer) table(columns []string, rows [][]string, width int) string {
	t := r.theme
	n := len(columns)
	for _, row := range rows {
		n = max(n, len(row))
	}
	if n == 0 {
		return ""
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, c := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(flatten(c)))
		}
	}
	measure(columns)
	for _, row := range rows {
		measure(row)
	}
	const gap = 2
	for total(widths)+gap*(n-1) > width {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 4 {
			break
		}
		widths[widest]--
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, n)
		for i := range parts {
			c := ""
			if i < len(cells) {
				c = flatten(cells[i])
			}
			parts[i] = style.Render(padRight(truncate(c, widths[i]), widths[i]))
		}
		return strings.Join(parts, strings.Repeat(" ", gap))
	}

	var out []string
	if len(columns) > 0 {
		out = append(out, line(columns, t.AccentBold))
		out = append(out, RenderDivider(t, min(total(widths)+gap*(n-1), width)))
	}
	for i, row := range rows {
		style := t.Base
		if i%2 == 1 {
			style = t.SubText
		}
		out = append(out, line(row, style))
	}
	return strings.Join(out, "\n")
}

func (r sectionRenderer) tabs(l *sectionLayout, sel int, labels []string, selected int, tone string, width int) {
	t := r.theme
	on := t.Renderer.NewStyle().
		Foreground(lipgloss.Color(deck.ColorBackground)).
		Background(t.Tone(tone)).
		Bold(true).
		Padding(0, 1)
	off := t.Renderer.NewStyle().Foreground(t.Subtext).Padding(0, 1)

	var row strings.Builder
	x := 0
	flush := func() {
		l.add(row.String())
		row.Reset()
		x = 0
	}
	for i, label := range labels {
		label = truncate(label, max(width-2, 4))
		style := off
		if i == selected {
			style = on
		}
		cell := style.Render(label)
		w := lipgloss.Width(cell)
		if x > 0 && x+1+w > width {
			flush()
		}
		if x > 0 {
			row.WriteString(" ")
			x++
		}
		if sel >= 0 {
			l.hits = append(l.hits, hitZone{line: len(l.lines), x0: x, x1: x + w, block: sel, index: i})
		}
		row.WriteString(cell)
		x += w
	}
	if x > 0 {
		flush()
	}
}

func (r sectionRenderer) phases(l *sectionLayout, key string, sel int, phases []deck.Phase, width int) {
	if len(phases) == 0 {
		return
	}
	if r.expand {
		for i := range phases {
			if i > 0 {
				l.blank()
			}
			r.phase(l, key, i, phases[i], width)
		}
		return
	}
	current := r.selection(sel, len(phases))
	labels := make([]string, len(phases))
	for i, p := range phases {
		labels[i] = p.Tag
		if labels[i] == "" {
			labels[i] = p.Title
		}
	}
	r.tabs(l, sel, labels, current, phases[current].Tone, width)
	l.blank()
	r.phase(l, key, current, phases[current], width)
}

func (r sectionRenderer) phase(l *sectionLayout, key string, current int, p deck.Phase, width int) {
	t := r.theme
	if r.expand && p.Tag != "" {
		l.add(RenderBadge(t, p.Tag, p.Tone))
	}
	head := t.Renderer.NewStyle().Foreground(t.Tone(p.Tone)).Bold(true).Render(p.Title)
	if p.Weeks != "" {
		head += "  " + t.MutedText.Render(p.Weeks)
	}
	l.add(head)
	r.bullets(l, deck.Block{Items: p.Items, Marker: "›", Tone: p.Tone}, width)
	for k, d := range p.Detail {
		l.blank()
		r.block(l, fmt.Sprintf("%s.p%d.b%d", key, current, k), -1, d, width)
	}
}

func (r sectionRenderer) cities(l *sectionLayout, key string, sel int, cities []deck.City, width int) {
	if len(cities) == 0 {
		return
	}
	if r.expand {
		for i := range cities {
			if i > 0 {
				l.blank()
			}
			r.city(l, key, i, cities[i], width)
		}
		return
	}
	current := r.selection(sel, len(cities))
	labels := make([]string, len(cities))
	for i, c := range cities {
		labels[i] = c.Name
	}
	r.tabs(l, sel, labels, current, "accent", width)
	l.blank()
	r.city(l, key, current, cities[current], width)
}

func (r sectionRenderer) city(l *sectionLayout, key string, current int, c deck.City, width int) {
	t := r.theme
	l.add(t.Title.Render(c.Name))
	if c.Tagline != "" {
		l.add(t.Lead.Width(width).Render(c.Tagline))
	}
	var facts []string
	if c.Remittances != "" {
		facts = append(facts, t.MutedText.Render("Remittances ")+t.AccentBold.Render(c.Remittances))
	}
	if c.Population != "" {
		facts = append(facts, t.MutedText.Render("Population ")+t.Base.Render(c.Population))
	}
	if len(facts) > 0 {
		l.add(strings.Join(facts, t.MutedText.Render("  ·  ")))
	}
	if c.Why != "" {
		l.blank()
		l.add(t.Base.Width(width).Render(c.Why))
	}

	heading := func(s string) {
		l.blank()
		l.add(t.AccentBold.Render(s))
	}
	if len(c.Neighborhoods) > 0 {
		heading("Target Neighborhoods")
		for _, n := range c.Neighborhoods {
			line := t.Title.Render(n.Name)
			if n.Priority != "" {
				tone := "muted"
				if strings.EqualFold(n.Priority, "primary") {
					tone = "accent"
				}
				line += " " + RenderBadge(t, n.Priority, tone)
			}
			l.add(line)
			if n.Desc != "" {
				l.add(t.SubText.PaddingLeft(2).Width(width).Render(n.Desc))
			}
		}
	}
	if len(c.Partners) > 0 {
		heading("Community Partners")
		r.bullets(l, deck.Block{Items: c.Partners, Marker: "◆", Tone: "blue"}, width)
	}
	if len(c.Events) > 0 {
		heading("Key Events")
		for _, e := range c.Events {
			l.add(t.Title.Render("▪ " + e.Name))
			if e.Desc != "" {
				l.add(t.SubText.PaddingLeft(2).Width(width).Render(e.Desc))
			}
		}
	}
	if len(c.Tactics) > 0 {
		heading("Tactics")
		r.bullets(l, deck.Block{Items: c.Tactics, Marker: "→", Tone: "green"}, width)
	}
	if len(c.KPIs) > 0 {
		heading("Target KPIs")
		r.statRow(l, fmt.Sprintf("%s.c%d", key, current), c.KPIs, width)
	}
}

func (r sectionRenderer) risks(l *sectionLayout, risks []deck.Risk, width int) {
	t := r.theme
	for i, rk := range risks {
		if i > 0 {
			l.blank()
		}
		head := t.Renderer.NewStyle().Foreground(t.Tone(rk.Tone)).Bold(true).Render(rk.Title)
		if rk.Category != "" {
			head += "  " + t.MutedText.Render(rk.Category)
		}
		l.add(head)
		var levels []string
		if rk.Likelihood != "" {
			levels = append(levels, t.MutedText.Render("Likelihood ")+RenderLevelBadge(t, rk.Likelihood))
		}
		if rk.Impact != "" {
			levels = append(levels, t.MutedText.Render("Impact ")+RenderLevelBadge(t, rk.Impact))
		}
		if len(levels) > 0 {
			l.add(strings.Join(levels, "   "))
		}
		if rk.Description != "" {
			l.add(t.Base.Width(width).Render(rk.Description))
		}
		if rk.Mitigation != "" {
			l.add(t.Renderer.NewStyle().Foreground(t.Success).Width(width).Render("Mitigation: " + rk.Mitigation))
		}
	}
}

func (r sectionRenderer) funnel(l *sectionLayout, steps []deck.FunnelStep, width int) {
	t := r.theme
	labelW, valueW := 0, 0
	for _, s := range steps {
		labelW = max(labelW, runewidth.StringWidth(s.Label))
		valueW = max(valueW, runewidth.StringWidth(s.Value))
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-valueW-2, 4)
	for _, s := range steps {
		l.add(t.Base.Render(padRight(truncate(s.Label, labelW), labelW)) + " " +
			RenderMiniBar(s.Share/100, barW, t, s.Tone) + " " +
			t.Renderer.NewStyle().Foreground(t.Tone(s.Tone)).Bold(true).Render(s.Value))
	}
}

func (r sectionRenderer) cards(l *sectionLayout, key string, cards []deck.Card, width int) {
	perRow := min(len(cards), 3)
	switch {
	case width < 40:
		perRow = 1
	case width < 80:
		perRow = min(perRow, 2)
	}
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		widths := columnWidths(width, end-start, 1)
		row := make([]string, 0, 2*(end-start))
		for j := start; j < end; j++ {
			if j > start {
				row = append(row, " ")
			}
			row = append(row, r.card(fmt.Sprintf("%s.h%d", key, j), cards[j], widths[j-start]))
		}
		top := l.add(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		for j := start; j < end; j++ {
			if h := cards[j].Headline; h != nil {
				// Border line, then title, then headline value.
				l.spots = append(l.spots, counterSpot{
					key:    fmt.Sprintf("%s.h%d", key, j),
					raw:    h.Value,
					region: anim.Region{Top: top + 2, Height: 1},
				})
			}
		}
	}
}

func (r sectionRenderer) card(key string, c deck.Card, width int) string {
	t := r.theme
	inner := max(width-4, 1)
	title := c.Title
	if c.Icon != "" {
		title = c.Icon + " " + title
	}
	titleStyle := t.Renderer.NewStyle().Foreground(t.Tone(c.Tone)).Bold(true)
	var lines []string
	if c.Badge != "" {
		badge := RenderBadge(t, truncate(c.Badge, max(inner/2, 4)), c.Tone)
		room := max(inner-lipgloss.Width(badge)-1, 1)
		lines = append(lines, titleStyle.Render(truncate(title, room))+" "+badge)
	} else {
		lines = append(lines, titleStyle.Render(truncate(title, inner)))
	}
	if h := c.Headline; h != nil {
		lines = append(lines,
			t.Renderer.NewStyle().Foreground(t.Tone(h.Tone)).Bold(true).Render(truncate(r.value(key, h.Value), inner)),
			t.MutedText.Render(truncate(h.Label, inner)))
	}
	for _, w := range wrapText(c.Text, inner) {
		lines = append(lines, t.SubText.Render(w))
	}
	for _, item := range c.Items {
		for i, w := range wrapText(item, max(inner-2, 1)) {
			prefix := "  "
			if i == 0 {
				prefix = t.Renderer.NewStyle().Foreground(t.Tone(c.Tone)).Render("•") + " "
			}
			lines = append(lines, prefix+t.Base.Render(w))
		}
	}
	return CardStyle(t, c.Tone, width).Render(strings.Join(lines, "\n"))
}

func (r sectionRenderer) callout(l *sectionLayout, b deck.Block, width int) {
	t := r.theme
	var parts []string
	if b.Title != "" {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Tone(b.Tone)).Bold(true).Render(b.Title))
	}
	if b.Text != "" {
		parts = append(parts, inlineBold(t, b.Text))
	}
	l.add(CardStyle(t, b.Tone, width).Render(strings.Join(parts, "\n")))
}

func (r sectionRenderer) selection(sel, n int) int {
	if sel < 0 || r.selected == nil {
		return 0
	}
	return min(max(r.selected(sel), 0), n-1)
}

// inlineBold renders **strong** spans in bold and drops other emphasis
// markers.
func inlineBold(t Theme, s string) string {
	parts := strings.Split(s, "**")
	var b strings.Builder
	for i, p := range parts {
		p = strings.ReplaceAll(p, "*", "")
		if i%2 == 1 {
			b.WriteString(t.Title.Render(p))
		} else {
			b.WriteString(t.Base.Render(p))
		}
	}
	return b.String()
}

// flatten collapses a cell to one line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func total(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
