package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/gtmdeck/pkg/chart"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// SnapshotOptions controls section snapshot export behaviour.
type SnapshotOptions struct {
	Path    string        // Output path; format inferred from extension when Format empty
	Format  string        // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Deck    *deck.Deck    // Deck the section belongs to; its title heads the image
	Section *deck.Section // Section to render
	Width   int           // Image width in pixels; 0 means 1200
}

// SaveSectionSnapshot renders a static picture of one section: header, stat
// cards, charts and text blocks in document order.
func SaveSectionSnapshot(opts SnapshotOptions) error {
	if opts.Section == nil {
		return fmt.Errorf("no section to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return renderSVG(opts.Path, layout)
	}
}

// --- layout computation ----------------------------------------------------

type opKind int

const (
	opRect opKind = iota
	opText
	opPolyline
)

// drawOp is one primitive shared by the SVG and PNG renderers.
type drawOp struct {
	kind   opKind
	x, y   float64
	w, h   float64
	xs, ys []float64
	text   string
	size   int
	bold   bool
	fill   color.RGBA
}

type layoutResult struct {
	Width  int
	Height int
	Ops    []drawOp
}

const (
	margin    = 32.0
	lineH     = 18.0
	charW     = 7.0
	cardH     = 92.0
	cardGap   = 16.0
	barH      = 14.0
	maxPerRow = 4
)

type layoutBuilder struct {
	width float64
	y     float64
	ops   []drawOp
}

func buildLayout(opts SnapshotOptions) layoutResult {
	width := opts.Width
	if width <= 0 {
		width = 1200
	}
	b := &layoutBuilder{width: float64(width)}

	title := ""
	if opts.Deck != nil {
		title = strings.TrimSpace(opts.Deck.Title + " · " + opts.Deck.Subtitle)
	}
	s := opts.Section
	b.rect(16, 16, b.width-32, 72, hexColor(deck.ColorSurface))
	b.text(margin, 44, title, 12, false, hexColor(deck.ColorTextDim))
	heading := s.Label
	if s.Icon != "" {
		heading = s.Icon + " " + heading
	}
	b.text(margin, 70, heading, 18, true, hexColor(deck.ColorAccent))
	b.y = 120

	if s.Title != "" {
		b.text(margin, b.y, s.Title, 16, true, hexColor(deck.ColorText))
		b.y += lineH + 6
	}
	b.paragraph(s.Lead, hexColor(deck.ColorTextSecondary))

	for _, blk := range s.Blocks {
		b.block(blk)
	}

	return layoutResult{Width: width, Height: int(b.y + margin), Ops: b.ops}
}

func (b *layoutBuilder) rect(x, y, w, h float64, c color.RGBA) {
	b.ops = append(b.ops, drawOp{kind: opRect, x: x, y: y, w: w, h: h, fill: c})
}

func (b *layoutBuilder) text(x, y float64, s string, size int, bold bool, c color.RGBA) {
	if s == "" {
		return
	}
	b.ops = append(b.ops, drawOp{kind: opText, x: x, y: y, text: s, size: size, bold: bold, fill: c})
}

func (b *layoutBuilder) cols() int {
	return int((b.width - 2*margin) / charW)
}

func (b *layoutBuilder) paragraph(s string, c color.RGBA) {
	for _, line := range wrap(s, b.cols()) {
		b.text(margin, b.y, line, 12, false, c)
		b.y += lineH
	}
	if s != "" {
		b.y += 8
	}
}

func (b *layoutBuilder) heading(s string, tone string) {
	if s == "" {
		return
	}
	b.text(margin, b.y, s, 14, true, toneColor(tone, deck.ColorText))
	b.y += lineH + 4
}

func (b *layoutBuilder) block(blk deck.Block) {
	b.heading(blk.Title, blk.Tone)
	switch blk.Kind {
	case deck.KindStats:
		b.statCards(blk.Stats)
	case deck.KindChart:
		b.chart(blk.Chart)
	case deck.KindMarkdown, deck.KindCallout:
		b.paragraph(blk.Text, hexColor(deck.ColorTextSecondary))
	case deck.KindBullets:
		b.list(blk.Items, blk.Marker)
	case deck.KindQuotes:
		for _, q := range blk.Quotes {
			b.paragraph("\""+q.Text+"\" ("+q.Source+")", hexColor(deck.ColorText))
		}
	case deck.KindTable:
		b.list(tableLines(blk.Columns, blk.Rows), "")
	case deck.KindFunnel:
		for _, f := range blk.Funnel {
			w := (b.width - 2*margin) * f.Share / 100
			b.rect(margin, b.y-12, max(w, 4), barH+4, toneColor(f.Tone, deck.ColorAccent))
			b.text(margin+8, b.y, f.Value+"  "+f.Label, 12, true, hexColor(deck.ColorBackground))
			b.y += lineH + 6
		}
		b.y += 8
	case deck.KindCards:
		var heads []deck.Stat
		for _, c := range blk.Cards {
			if c.Headline != nil {
				heads = append(heads, deck.Stat{Label: c.Title, Value: c.Headline.Value, Sub: c.Headline.Label, Tone: c.Tone})
			}
		}
		b.statCards(heads)
		for _, c := range blk.Cards {
			b.heading(c.Title, c.Tone)
			b.paragraph(c.Text, hexColor(deck.ColorTextSecondary))
			b.list(c.Items, "•")
		}
	case deck.KindPhases:
		for _, p := range blk.Phases {
			b.heading(p.Tag+" · "+p.Title+"  "+p.Weeks, p.Tone)
			b.list(p.Items, "›")
		}
	case deck.KindCities:
		for _, c := range blk.Cities {
			b.heading(c.Name+"  "+c.Remittances, "accent")
			b.paragraph(c.Tagline, hexColor(deck.ColorTextSecondary))
			b.statCards(c.KPIs)
		}
	case deck.KindRisks:
		for _, r := range blk.Risks {
			b.heading(r.Title+"  ["+r.Likelihood+" / "+r.Impact+"]", r.Tone)
			b.paragraph(r.Mitigation, hexColor(deck.ColorTextSecondary))
		}
	}
	if blk.Source != "" {
		b.text(margin, b.y, blk.Source, 10, false, hexColor(deck.ColorTextDim))
		b.y += lineH
	}
	b.y += 6
}

func (b *layoutBuilder) list(items []string, marker string) {
	if marker == "" {
		marker = "•"
	}
	cols := b.cols() - 2
	for _, it := range items {
		lines := wrap(it, cols)
		for i, line := range lines {
			prefix := "  "
			if i == 0 {
				prefix = marker + " "
			}
			b.text(margin, b.y, prefix+line, 12, false, hexColor(deck.ColorText))
			b.y += lineH
		}
	}
	if len(items) > 0 {
		b.y += 8
	}
}

func (b *layoutBuilder) statCards(stats []deck.Stat) {
	if len(stats) == 0 {
		return
	}
	perRow := min(len(stats), maxPerRow)
	w := (b.width - 2*margin - float64(perRow-1)*cardGap) / float64(perRow)
	for i, s := range stats {
		col := i % perRow
		if col == 0 && i > 0 {
			b.y += cardH + cardGap
		}
		x := margin + float64(col)*(w+cardGap)
		top := b.y - 14
		b.rect(x, top, w, cardH, hexColor(deck.ColorCard))
		b.rect(x, top, 4, cardH, toneColor(s.Tone, deck.ColorAccent))
		maxChars := int((w - 24) / charW)
		b.text(x+14, top+22, truncate(s.Label, maxChars), 11, false, hexColor(deck.ColorTextSecondary))
		b.text(x+14, top+52, finalValue(s.Value), 24, true, toneColor(s.Tone, deck.ColorAccent))
		b.text(x+14, top+76, truncate(s.Sub, maxChars), 10, false, hexColor(deck.ColorTextDim))
	}
	b.y += cardH + cardGap
}

func (b *layoutBuilder) chart(c *deck.Chart) {
	if c == nil || len(c.Series) == 0 {
		return
	}
	plotW := b.width - 2*margin
	switch c.Type {
	case deck.ChartLine:
		var all []float64
		for _, s := range c.Series {
			all = append(all, chart.Values(s.Records)...)
		}
		peak := chart.Max(all)
		plotH := 160.0
		top := b.y
		b.rect(margin, top, plotW, plotH, hexColor(deck.ColorSurface))
		for _, s := range c.Series {
			n := len(s.Records)
			if n == 0 {
				continue
			}
			xs := make([]float64, n)
			ys := make([]float64, n)
			for i, r := range s.Records {
				xs[i] = margin + 20 + float64(i)*(plotW-40)/float64(max(n-1, 1))
				frac := 0.0
				if peak > 0 {
					frac = r.Value / peak
				}
				ys[i] = top + plotH - 16 - frac*(plotH-32)
			}
			b.ops = append(b.ops, drawOp{kind: opPolyline, xs: xs, ys: ys, fill: toneColor(s.Tone, deck.ColorAccent)})
		}
		b.y = top + plotH + lineH
		var axis []string
		for _, r := range c.Series[0].Records {
			axis = append(axis, r.Category)
		}
		b.text(margin, b.y, strings.Join(axis, "  ·  "), 10, false, hexColor(deck.ColorTextDim))
		b.y += lineH
		var legend []string
		for _, s := range c.Series {
			if len(s.Records) > 0 {
				legend = append(legend, s.Name+" "+chart.FormatValue(c, s.Records[len(s.Records)-1].Value))
			}
		}
		b.text(margin, b.y, strings.Join(legend, "   "), 11, false, hexColor(deck.ColorTextSecondary))
		b.y += lineH + 8
	case deck.ChartShare:
		s := c.Series[0]
		shares := chart.Shares(chart.Values(s.Records))
		x := margin
		for i, r := range s.Records {
			w := plotW * shares[i] / 100
			b.rect(x, b.y-12, w, barH+6, toneColor(r.Tone, deck.ColorAccent))
			x += w
		}
		b.y += lineH + 8
		for _, r := range s.Records {
			b.text(margin, b.y, "■ "+r.Category+"  "+chart.FormatValue(c, r.Value), 12, false, toneColor(r.Tone, deck.ColorText))
			b.y += lineH
		}
		b.y += 8
	default:
		s := c.Series[0]
		peak := chart.Max(chart.Values(s.Records))
		labelW := 160.0
		barW := plotW - labelW - 140
		for _, r := range s.Records {
			tone := r.Tone
			if tone == "" {
				tone = s.Tone
			}
			b.text(margin, b.y, truncate(r.Category, int(labelW/charW)-1), 12, false, hexColor(deck.ColorText))
			w := float64(chart.Scale(r.Value, peak, int(barW)))
			b.rect(margin+labelW, b.y-12, barW, barH, hexColor(deck.ColorSurface))
			if w > 0 {
				b.rect(margin+labelW, b.y-12, w, barH, toneColor(tone, deck.ColorAccent))
			}
			b.text(margin+labelW+barW+10, b.y, valueLabel(c, r), 12, true, hexColor(deck.ColorText))
			b.y += lineH + 4
		}
		b.y += 8
	}
}

func valueLabel(c *deck.Chart, r deck.Record) string {
	v := chart.FormatValue(c, r.Value)
	if r.Note != "" {
		v += " · " + r.Note
	}
	return v
}

func tableLines(cols []string, rows [][]string) []string {
	out := make([]string, 0, len(rows)+1)
	if len(cols) > 0 {
		out = append(out, strings.Join(cols, " | "))
	}
	for _, r := range rows {
		out = append(out, strings.Join(r, " | "))
	}
	return out
}

// --- renderers -------------------------------------------------------------

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(hexColor(deck.ColorBackground))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, op := range layout.Ops {
		dc.SetColor(op.fill)
		switch op.kind {
		case opRect:
			dc.DrawRoundedRectangle(op.x, op.y, op.w, op.h, 4)
			dc.Fill()
		case opText:
			dc.DrawStringAnchored(op.text, op.x, op.y, 0, 0)
		case opPolyline:
			dc.SetLineWidth(2.5)
			for i := range op.xs {
				if i == 0 {
					dc.MoveTo(op.xs[i], op.ys[i])
					continue
				}
				dc.LineTo(op.xs[i], op.ys[i])
			}
			dc.Stroke()
		}
	}

	return dc.SavePNG(path)
}

func renderSVG(path string, layout layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, "fill:"+css(hexColor(deck.ColorBackground)))

	for _, op := range layout.Ops {
		switch op.kind {
		case opRect:
			canvas.Roundrect(int(op.x), int(op.y), int(op.w), int(op.h), 4, 4, "fill:"+css(op.fill))
		case opText:
			style := fmt.Sprintf("fill:%s;font-size:%dpx;font-family:monospace", css(op.fill), op.size)
			if op.bold {
				style += ";font-weight:bold"
			}
			canvas.Text(int(op.x), int(op.y), op.text, style)
		case opPolyline:
			xs := make([]int, len(op.xs))
			ys := make([]int, len(op.ys))
			for i := range op.xs {
				xs[i], ys[i] = int(op.xs[i]), int(op.ys[i])
			}
			canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2.5", css(op.fill)))
		}
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

// wrap breaks s into lines of at most width cells on word boundaries.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 || width <= 0 {
		return nil
	}
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, w := range words {
		ww := runewidth.StringWidth(w)
		if curW > 0 && curW+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(w)
		curW += ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "...")
}

func toneColor(tone, fallback string) color.RGBA {
	if tone == "" {
		return hexColor(fallback)
	}
	return hexColor(deck.ToneColor(tone))
}

// hexColor parses "#RRGGBB"; malformed input yields opaque black.
func hexColor(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
