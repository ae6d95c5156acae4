// Package chart renders static deck charts as terminal text: horizontal bars,
// multi-series sparkline columns, and a stacked share bar with a legend.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// Styler maps a deck tone name to a style. An empty tone means the chart's
// default color.
type Styler func(tone string) lipgloss.Style

var levels = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Values extracts record values in order.
func Values(records []deck.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Value
	}
	return out
}

// Max returns the largest value, or 0 for an empty or all-negative input.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Max(floats.Max(values), 0)
}

// Shares converts values to percentages of their sum. A zero sum yields all
// zeros.
func Shares(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := floats.Sum(values)
	if sum == 0 {
		return out
	}
	floats.ScaleTo(out, 100/sum, values)
	return out
}

// Mean is the arithmetic mean of values; 0 when empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Scale maps v onto [0, width] cells relative to peak.
func Scale(v, peak float64, width int) int {
	if peak <= 0 || v <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(v / peak * float64(width)))
	return min(n, width)
}

// FormatValue renders a chart value with the chart's prefix and suffix.
func FormatValue(c *deck.Chart, v float64) string {
	return c.Prefix + humanize.Commaf(v) + c.Suffix
}

// Render draws c within width cells.
func Render(c *deck.Chart, width int, style Styler) string {
	if c == nil || len(c.Series) == 0 {
		return ""
	}
	if style == nil {
		style = func(string) lipgloss.Style { return lipgloss.NewStyle() }
	}
	switch c.Type {
	case deck.ChartLine:
		return renderLine(c, width, style)
	case deck.ChartShare:
		return renderShare(c, width, style)
	default:
		return renderBar(c, width, style)
	}
}

func renderBar(c *deck.Chart, width int, style Styler) string {
	s := c.Series[0]
	values := Values(s.Records)
	peak := Max(values)

	labelW := 0
	valueW := 0
	for _, r := range s.Records {
		labelW = max(labelW, runewidth.StringWidth(r.Category))
		valueW = max(valueW, runewidth.StringWidth(valueLabel(c, r)))
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-valueW-3, 4)

	var sb strings.Builder
	for i, r := range s.Records {
		tone := r.Tone
		if tone == "" {
			tone = s.Tone
		}
		filled := Scale(r.Value, peak, barW)
		label := runewidth.FillRight(runewidth.Truncate(r.Category, labelW, "…"), labelW)
		sb.WriteString(label)
		sb.WriteString(" ")
		sb.WriteString(style(tone).Render(strings.Repeat("█", filled)))
		sb.WriteString(style("muted").Render(strings.Repeat("░", barW-filled)))
		sb.WriteString(" ")
		sb.WriteString(valueLabel(c, r))
		if i < len(s.Records)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func valueLabel(c *deck.Chart, r deck.Record) string {
	v := FormatValue(c, r.Value)
	if r.Note != "" {
		v += " · " + r.Note
	}
	return v
}

// renderLine draws each series as a row of eighth-block columns sharing one
// scale, followed by the category axis.
func renderLine(c *deck.Chart, width int, style Styler) string {
	var all []float64
	nameW := 0
	for _, s := range c.Series {
		all = append(all, Values(s.Records)...)
		nameW = max(nameW, runewidth.StringWidth(s.Name))
	}
	peak := Max(all)
	nameW = min(nameW, width/4)

	n := len(c.Series[0].Records)
	colW := 1
	if n > 0 {
		colW = max((width-nameW-2)/n, 1)
	}

	var sb strings.Builder
	for _, s := range c.Series {
		sb.WriteString(runewidth.FillRight(runewidth.Truncate(s.Name, nameW, "…"), nameW))
		sb.WriteString("  ")
		var row strings.Builder
		for _, r := range s.Records {
			level := 0
			if peak > 0 && r.Value > 0 {
				level = max(int(math.Round(r.Value/peak*8)), 1)
			}
			row.WriteString(strings.Repeat(string(levels[min(level, 8)]), colW))
		}
		sb.WriteString(style(s.Tone).Render(row.String()))
		if len(s.Records) > 0 {
			sb.WriteString(" " + FormatValue(c, s.Records[len(s.Records)-1].Value))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat(" ", nameW+2))
	var axis strings.Builder
	for _, r := range c.Series[0].Records {
		axis.WriteString(runewidth.FillRight(runewidth.Truncate(r.Category, colW, ""), colW))
	}
	sb.WriteString(style("muted").Render(axis.String()))
	if len(all) > 0 {
		sb.WriteString("\n")
		sb.WriteString(style("muted").Render(fmt.Sprintf("%s  peak %s · mean %s",
			strings.Repeat(" ", nameW), FormatValue(c, peak), FormatValue(c, Mean(Values(c.Series[0].Records))))))
	}
	return sb.String()
}

func renderShare(c *deck.Chart, width int, style Styler) string {
	s := c.Series[0]
	shares := Shares(Values(s.Records))

	var bar, legend strings.Builder
	used := 0
	for i, r := range s.Records {
		cells := int(math.Round(shares[i] / 100 * float64(width)))
		if i == len(s.Records)-1 {
			cells = width - used
		}
		cells = max(min(cells, width-used), 0)
		used += cells
		bar.WriteString(style(r.Tone).Render(strings.Repeat("█", cells)))

		legend.WriteString(style(r.Tone).Render("■"))
		legend.WriteString(fmt.Sprintf(" %s %s", r.Category, FormatValue(c, r.Value)))
		if i < len(s.Records)-1 {
			legend.WriteString("\n")
		}
	}
	return bar.String() + "\n" + legend.String()
}
