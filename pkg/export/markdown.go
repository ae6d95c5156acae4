package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vanderheijden86/gtmdeck/pkg/chart"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/stat"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// MarkdownOptions controls document-level output.
type MarkdownOptions struct {
	// Generated stamps the header; zero omits the line.
	Generated time.Time
}

// GenerateMarkdown renders the whole deck as one Markdown document with a
// table of contents.
func GenerateMarkdown(d *deck.Deck, opts MarkdownOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", d.Title))
	if d.Subtitle != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", d.Subtitle))
	}
	if !opts.Generated.IsZero() {
		sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", opts.Generated.Format(time.RFC1123)))
	}

	slugCounts := make(map[string]int, len(d.Sections))
	slugs := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		slugs[i] = uniqueSlug(createSlug(s.Label), slugCounts)
	}

	sb.WriteString("## Contents\n\n")
	for i, s := range d.Sections {
		sb.WriteString(fmt.Sprintf("%d. [%s](#%s)\n", i+1, s.Label, slugs[i]))
	}
	sb.WriteString("\n---\n\n")

	for i := range d.Sections {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slugs[i]))
		writeSection(&sb, &d.Sections[i])
		sb.WriteString("---\n\n")
	}

	for _, line := range d.Footer {
		sb.WriteString(fmt.Sprintf("*%s*  \n", line))
	}
	return sb.String()
}

// SectionMarkdown renders a single section, as copied to the clipboard.
func SectionMarkdown(s *deck.Section) string {
	var sb strings.Builder
	writeSection(&sb, s)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// SaveMarkdownToFile writes the deck document to filename.
func SaveMarkdownToFile(d *deck.Deck, filename string) error {
	content := GenerateMarkdown(d, MarkdownOptions{Generated: time.Now()})
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

func writeSection(sb *strings.Builder, s *deck.Section) {
	heading := s.Label
	if s.Icon != "" {
		heading = s.Icon + " " + heading
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", heading))
	if s.Title != "" && s.Title != s.Label {
		sb.WriteString(fmt.Sprintf("### %s\n\n", s.Title))
	}
	if s.Lead != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", oneLine(s.Lead)))
	}
	for _, b := range s.Blocks {
		writeBlock(sb, b, "###")
	}
}

func writeBlock(sb *strings.Builder, b deck.Block, h string) {
	if b.Title != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n\n", h, b.Title))
	}
	switch b.Kind {
	case deck.KindStats:
		writeStatsTable(sb, b.Stats)
	case deck.KindMarkdown:
		sb.WriteString(strings.TrimSpace(b.Text) + "\n\n")
	case deck.KindCallout:
		for _, line := range strings.Split(strings.TrimSpace(b.Text), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	case deck.KindBullets:
		writeList(sb, b.Items)
	case deck.KindQuotes:
		for _, q := range b.Quotes {
			sb.WriteString(fmt.Sprintf("> \"%s\"\n", q.Text))
			if q.Source != "" {
				sb.WriteString(fmt.Sprintf(">\n> (%s)\n", q.Source))
			}
			if q.Alignment != "" {
				sb.WriteString(fmt.Sprintf("\n→ %s\n", q.Alignment))
			}
			sb.WriteString("\n")
		}
	case deck.KindTable:
		writeTable(sb, b.Columns, b.Rows)
	case deck.KindChart:
		writeChart(sb, b.Chart)
	case deck.KindFunnel:
		rows := make([][]string, len(b.Funnel))
		for i, f := range b.Funnel {
			rows[i] = []string{f.Value, f.Label, fmt.Sprintf("%g%%", f.Share)}
		}
		writeTable(sb, []string{"Size", "Segment", "Share"}, rows)
	case deck.KindCards:
		for _, c := range b.Cards {
			title := c.Title
			if c.Icon != "" {
				title = c.Icon + " " + title
			}
			if c.Badge != "" {
				title += " · " + c.Badge
			}
			sb.WriteString(fmt.Sprintf("**%s**\n\n", title))
			if c.Headline != nil {
				sb.WriteString(fmt.Sprintf("%s %s\n\n", finalValue(c.Headline.Value), c.Headline.Label))
			}
			if c.Text != "" {
				sb.WriteString(oneLine(c.Text) + "\n\n")
			}
			writeList(sb, c.Items)
		}
	case deck.KindPhases:
		for _, p := range b.Phases {
			sb.WriteString(fmt.Sprintf("%s %s: %s", h, p.Tag, p.Title))
			if p.Weeks != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", p.Weeks))
			}
			sb.WriteString("\n\n")
			writeList(sb, p.Items)
			for _, detail := range p.Detail {
				writeBlock(sb, detail, h+"#")
			}
		}
	case deck.KindCities:
		for _, c := range b.Cities {
			writeCity(sb, c, h)
		}
	case deck.KindRisks:
		for _, r := range b.Risks {
			sb.WriteString(fmt.Sprintf("**%s** (%s · likelihood %s · impact %s)\n\n", r.Title, r.Category, r.Likelihood, r.Impact))
			if r.Description != "" {
				sb.WriteString(r.Description + "\n\n")
			}
			if r.Mitigation != "" {
				sb.WriteString(fmt.Sprintf("*Mitigation:* %s\n\n", r.Mitigation))
			}
		}
	}
	if b.Source != "" {
		sb.WriteString(fmt.Sprintf("<sub>%s</sub>\n\n", b.Source))
	}
}

func writeCity(sb *strings.Builder, c deck.City, h string) {
	sb.WriteString(fmt.Sprintf("%s %s\n\n", h, c.Name))
	if c.Tagline != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", c.Tagline))
	}
	if c.Remittances != "" || c.Population != "" {
		sb.WriteString(fmt.Sprintf("%s remittances · %s\n\n", c.Remittances, c.Population))
	}
	if c.Why != "" {
		sb.WriteString(oneLine(c.Why) + "\n\n")
	}
	if len(c.Neighborhoods) > 0 {
		rows := make([][]string, len(c.Neighborhoods))
		for i, n := range c.Neighborhoods {
			rows[i] = []string{n.Name, n.Priority, n.Desc}
		}
		writeTable(sb, []string{"Neighborhood", "Priority", "Notes"}, rows)
	}
	if len(c.Partners) > 0 {
		sb.WriteString("**Community partners**\n\n")
		writeList(sb, c.Partners)
	}
	if len(c.Events) > 0 {
		sb.WriteString("**Events**\n\n")
		items := make([]string, len(c.Events))
		for i, e := range c.Events {
			items[i] = fmt.Sprintf("**%s**: %s", e.Name, e.Desc)
		}
		writeList(sb, items)
	}
	if len(c.Tactics) > 0 {
		sb.WriteString("**Tactics**\n\n")
		writeList(sb, c.Tactics)
	}
	if len(c.KPIs) > 0 {
		writeStatsTable(sb, c.KPIs)
	}
}

func writeStatsTable(sb *strings.Builder, stats []deck.Stat) {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{s.Label, "**" + finalValue(s.Value) + "**", s.Sub}
	}
	writeTable(sb, []string{"Metric", "Value", "Notes"}, rows)
}

func writeChart(sb *strings.Builder, c *deck.Chart) {
	if c == nil || len(c.Series) == 0 {
		return
	}
	cols := []string{"Category"}
	for _, s := range c.Series {
		name := s.Name
		if name == "" {
			name = "Value"
		}
		cols = append(cols, name)
	}
	first := c.Series[0].Records
	rows := make([][]string, len(first))
	for i, r := range first {
		row := []string{r.Category}
		for _, s := range c.Series {
			cell := ""
			if i < len(s.Records) {
				cell = chart.FormatValue(c, s.Records[i].Value)
				if s.Records[i].Note != "" {
					cell += " (" + s.Records[i].Note + ")"
				}
			}
			row = append(row, cell)
		}
		rows[i] = row
	}
	writeTable(sb, cols, rows)
}

func writeTable(sb *strings.Builder, cols []string, rows [][]string) {
	if len(cols) == 0 {
		return
	}
	sb.WriteString("| " + strings.Join(escapeCells(cols), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(cols)) + "\n")
	for _, r := range rows {
		sb.WriteString("| " + strings.Join(escapeCells(r), " | ") + " |\n")
	}
	sb.WriteString("\n")
}

func writeList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		return
	}
	for _, it := range items {
		sb.WriteString("- " + oneLine(it) + "\n")
	}
	sb.WriteString("\n")
}

// escapeCells sanitizes newlines and escapes pipes for table cells.
func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "\r", "")
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// finalValue is the value a counter settles on.
func finalValue(raw string) string {
	if v, ok := stat.Parse(raw); ok {
		return v.Final()
	}
	return raw
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
